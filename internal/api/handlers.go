// Package api exposes the session over a local HTTP surface. There is no
// authentication layer; the server binds to localhost and serves a single
// learner.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"aria/internal/profile"
	"aria/internal/session"
	"aria/internal/storage"
)

const maxBodySize = 1 << 20 // 1MB

// Backend is the slice of the model client the API layer needs for the
// capability probe.
type Backend interface {
	IsRunning(ctx context.Context) bool
	ListModels(ctx context.Context) ([]string, error)
}

type AppDeps struct {
	Session *session.Session
	Backend Backend
	Model   string
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth(deps))
	r.Get("/models", handleModels(deps))
	r.Post("/chat", handleChat(deps))
	r.Get("/profile", handleGetProfile(deps))
	r.Patch("/profile", handlePatchProfile(deps))
	r.Delete("/profile", handleResetProfile(deps))
	r.Get("/history", handleHistory(deps))
	r.Post("/roadmap/phases/{index}/complete", handleCompletePhase(deps))

	return r
}

func handleHealth(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"ollama":         deps.Backend.IsRunning(r.Context()),
			"model":          deps.Model,
			"persona":        deps.Session.Persona(),
			"diagnosis_done": deps.Session.Profile().DiagnosisDone,
		})
	}
}

func handleModels(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models, err := deps.Backend.ListModels(r.Context())
		if err != nil {
			httpError(w, http.StatusBadGateway, "backend_error", "listing models: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"models": models, "active": deps.Model})
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// handleChat runs one turn and streams tokens as SSE events. Each token is a
// "token" event; the terminal "done" event carries the full TurnResult so
// clients do not reassemble state from fragments.
func handleChat(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Message == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			httpError(w, http.StatusInternalServerError, "server_error", "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		res := deps.Session.Turn(r.Context(), req.Message, func(tok string) {
			payload, err := json.Marshal(map[string]string{"content": tok})
			if err != nil {
				return
			}
			fmt.Fprintf(w, "event: token\ndata: %s\n\n", payload)
			flusher.Flush()
		})

		final, err := json.Marshal(res)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: done\ndata: %s\n\n", final)
		flusher.Flush()
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Session.Profile())
	}
}

// handlePatchProfile applies a manual edit. Unknown keys are rejected so a
// typoed field name never silently no-ops.
func handlePatchProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		var edit profile.Edit
		if err := dec.Decode(&edit); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		p, err := deps.Session.ApplyEdit(edit)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleResetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Session.Reset()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "server_error", "resetting profile: %v", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func handleHistory(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := deps.Session.History()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "server_error", "loading history: %v", err)
			return
		}
		if msgs == nil {
			msgs = []storage.Message{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
	}
}

func handleCompletePhase(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid phase index")
			return
		}

		p, err := deps.Session.CompletePhase(index)
		if errors.Is(err, profile.ErrPhaseOutOfRange) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "server_error", "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
