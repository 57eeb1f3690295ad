// Package session sequences one turn of conversation: heuristic extraction,
// persona selection, the model call, payload absorption, and persistence.
// The session owns the profile, the transcript, and the active persona; no
// other package mutates them.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"aria/internal/absorb"
	"aria/internal/extract"
	"aria/internal/ollama"
	"aria/internal/persona"
	"aria/internal/profile"
	"aria/internal/prompt"
	"aria/internal/storage"
)

// DefaultHistoryWindow bounds how many recent transcript messages are sent
// to the model each turn.
const DefaultHistoryWindow = 16

// chatOpts are the generation settings for every conversational turn.
var chatOpts = &ollama.Options{Temperature: 0.72, TopP: 0.9, NumPredict: 2048}

// Chatter is the slice of the model backend the session needs.
type Chatter interface {
	ChatStream(ctx context.Context, model string, messages []ollama.Message, opts *ollama.Options, onToken func(string)) (string, error)
}

// Transcript is the slice of the storage layer holding the message log.
type Transcript interface {
	SaveMessage(m storage.Message) error
	GetMessages(sessionID string) ([]storage.Message, error)
	ClearMessages(sessionID string) error
}

// Session holds the conversational state for one learner. Methods are safe
// for concurrent use; turns are serialized.
type Session struct {
	mu sync.Mutex

	profiles   *profile.Store
	transcript Transcript
	chatter    Chatter
	model      string
	window     int

	current profile.Profile
	active  persona.ID
}

// New loads persisted state and returns a ready session. historyWindow <= 0
// selects the default.
func New(profiles *profile.Store, transcript Transcript, chatter Chatter, model string, historyWindow int) *Session {
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &Session{
		profiles:   profiles,
		transcript: transcript,
		chatter:    chatter,
		model:      model,
		window:     historyWindow,
		current:    profiles.LoadOrDefault(),
		active:     persona.Default,
	}
}

// TurnResult reports what one turn produced and changed.
type TurnResult struct {
	Reply          string     `json:"reply"`
	Persona        persona.ID `json:"persona"`
	ProfileChanged bool       `json:"profile_changed"`
	Absorbed       bool       `json:"absorbed"`
}

// Turn runs one conversation turn. It never fails: a model error degrades to
// a diagnostic reply and a persistence error is logged and skipped, so the
// in-memory state stays usable either way.
func (s *Session) Turn(ctx context.Context, utterance string, onToken func(string)) TurnResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = persona.Select(utterance, s.active)

	changed := extract.Extract(utterance, &s.current)
	if changed {
		s.saveProfile()
	}

	history := s.recentHistory()
	s.appendMessage("user", utterance)

	reply, ok := s.invokeModel(ctx, utterance, history, onToken)
	result := TurnResult{Reply: reply, Persona: s.active, ProfileChanged: changed}

	// The ok guard only skips the diagnostic substitute, which is fixed
	// local text with no fenced block; absorption of a real reply is
	// unconditional.
	if ok && absorb.Absorb(reply, &s.current) {
		result.Absorbed = true
		result.ProfileChanged = true
		s.saveProfile()
	}

	s.appendMessage("assistant", reply)
	return result
}

// invokeModel streams one completion. The second return is false when the
// backend failed and the reply is the diagnostic substitute; diagnostic
// replies are never fed to the absorber.
func (s *Session) invokeModel(ctx context.Context, utterance string, history []storage.Message, onToken func(string)) (string, bool) {
	messages := make([]ollama.Message, 0, len(history)+2)
	messages = append(messages, ollama.Message{
		Role:    "system",
		Content: prompt.Build(s.current, s.active),
	})
	for _, m := range history {
		messages = append(messages, ollama.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, ollama.Message{Role: "user", Content: utterance})

	reply, err := s.chatter.ChatStream(ctx, s.model, messages, chatOpts, onToken)
	if err != nil {
		slog.Warn("model call failed", "error", err)
		diag := s.diagnosticReply()
		if onToken != nil {
			onToken(diag)
		}
		return diag, false
	}
	return reply, true
}

func (s *Session) diagnosticReply() string {
	return fmt.Sprintf(
		"I couldn't reach the model backend. Make sure Ollama is running ('ollama serve') and the model is available ('ollama pull %s'), then try again.",
		s.model)
}

// recentHistory returns the last window messages of the transcript. A read
// failure degrades to an empty history.
func (s *Session) recentHistory() []storage.Message {
	msgs, err := s.transcript.GetMessages(profile.DefaultSession)
	if err != nil {
		slog.Warn("loading transcript failed", "error", err)
		return nil
	}
	if len(msgs) > s.window {
		msgs = msgs[len(msgs)-s.window:]
	}
	return msgs
}

func (s *Session) appendMessage(role, content string) {
	err := s.transcript.SaveMessage(storage.Message{
		ID:        uuid.NewString(),
		SessionID: profile.DefaultSession,
		Role:      role,
		Content:   content,
	})
	if err != nil {
		slog.Warn("persisting message failed", "role", role, "error", err)
	}
}

func (s *Session) saveProfile() {
	if err := s.profiles.Save(&s.current); err != nil {
		slog.Warn("persisting profile failed", "error", err)
	}
}

// Profile returns a snapshot of the current profile.
func (s *Session) Profile() profile.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Persona returns the currently active persona.
func (s *Session) Persona() persona.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ApplyEdit overwrites profile fields from a manual edit and persists the
// result. Unlike extraction, edits may change already-set fields.
func (s *Session) ApplyEdit(e profile.Edit) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, err := s.current.ApplyEdit(e)
	if err != nil {
		return s.current, err
	}
	if changed {
		if err := s.profiles.Save(&s.current); err != nil {
			return s.current, fmt.Errorf("saving profile: %w", err)
		}
	}
	return s.current, nil
}

// CompletePhase marks roadmap phase i complete and persists the result.
func (s *Session) CompletePhase(i int) (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.current.CompletePhase(i); err != nil {
		return s.current, err
	}
	if err := s.profiles.Save(&s.current); err != nil {
		return s.current, fmt.Errorf("saving profile: %w", err)
	}
	return s.current, nil
}

// Reset wipes the profile, the transcript, and the active persona back to
// session-start state.
func (s *Session) Reset() (profile.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh, err := s.profiles.Reset()
	if err != nil {
		return s.current, fmt.Errorf("resetting profile: %w", err)
	}
	if err := s.transcript.ClearMessages(profile.DefaultSession); err != nil {
		return s.current, fmt.Errorf("clearing transcript: %w", err)
	}
	s.current = fresh
	s.active = persona.Default
	return s.current, nil
}

// History returns the full persisted transcript in chronological order.
func (s *Session) History() ([]storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.GetMessages(profile.DefaultSession)
}
