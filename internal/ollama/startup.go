package ollama

import (
	"context"
	"fmt"
	"log/slog"
)

// EnsureReady verifies the Ollama server is reachable and that the chat
// model is present locally, pulling it when missing. Called once on server
// start so the first conversation turn never pays the download cost.
func EnsureReady(ctx context.Context, client *Client, model string) error {
	if !client.IsRunning(ctx) {
		return fmt.Errorf("ollama is not running at %s; start it with 'ollama serve'", client.baseURL)
	}

	if client.HasModel(ctx, model) {
		return nil
	}

	slog.Info("pulling chat model", "model", model)
	err := client.PullModel(ctx, model, func(p PullProgress) {
		if p.Total > 0 {
			slog.Debug("pull progress", "model", model, "status", p.Status,
				"completed", p.Completed, "total", p.Total)
		}
	})
	if err != nil {
		return fmt.Errorf("pulling model %s: %w", model, err)
	}
	slog.Info("chat model ready", "model", model)
	return nil
}
