package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"aria/internal/storage"
)

// DefaultSession is the fixed session identity the profile document is
// stored under. The design is single-user.
const DefaultSession = "default"

// DocumentStore defines the persistence operations the profile Store needs.
// Implemented by storage.Store.
type DocumentStore interface {
	SaveProfileDocument(sessionID, document string) error
	GetProfileDocument(sessionID string) (string, error)
	DeleteProfileDocument(sessionID string) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Store persists the Profile as one whole JSON document keyed by session.
type Store struct {
	docs    DocumentStore
	clock   Clock
	session string
}

// NewStore creates a Store for the default session.
func NewStore(docs DocumentStore) *Store {
	return &Store{docs: docs, clock: realClock{}, session: DefaultSession}
}

// NewStoreWithClock creates a Store with a custom clock (for testing).
func NewStoreWithClock(docs DocumentStore, clock Clock) *Store {
	return &Store{docs: docs, clock: clock, session: DefaultSession}
}

// LoadOrDefault returns the stored profile, forward-filling any fields
// absent from an older document with the canonical empty-schema defaults.
// A missing or unreadable document yields the empty profile.
func (s *Store) LoadOrDefault() Profile {
	doc, err := s.docs.GetProfileDocument(s.session)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("loading profile document", "error", err)
		}
		return Empty()
	}

	// Decode over the empty schema so new fields keep their defaults.
	p := Empty()
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		slog.Warn("malformed profile document, starting fresh", "error", err)
		return Empty()
	}
	fillDefaults(&p)
	return p
}

// Save stamps last_updated and overwrites the whole stored document.
func (s *Store) Save(p *Profile) error {
	p.LastUpdated = s.clock.Now().UTC().Format(time.RFC3339)
	fillDefaults(p)

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshalling profile: %w", err)
	}
	if err := s.docs.SaveProfileDocument(s.session, string(data)); err != nil {
		return fmt.Errorf("saving profile document: %w", err)
	}
	return nil
}

// Reset deletes the stored document and returns the canonical empty profile.
func (s *Store) Reset() (Profile, error) {
	if err := s.docs.DeleteProfileDocument(s.session); err != nil {
		return Empty(), fmt.Errorf("deleting profile document: %w", err)
	}
	return Empty(), nil
}

// fillDefaults replaces nil sequences with empty ones so the schema stays
// stable across marshal/unmarshal round trips.
func fillDefaults(p *Profile) {
	if p.CurrentTools == nil {
		p.CurrentTools = []string{}
	}
	if p.Strengths == nil {
		p.Strengths = []string{}
	}
	if p.Gaps == nil {
		p.Gaps = []string{}
	}
	if p.Roadmap == nil {
		p.Roadmap = []Phase{}
	}
	if p.CompletedPhases == nil {
		p.CompletedPhases = []int{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
	if p.WeeklyTasks == nil {
		p.WeeklyTasks = []Task{}
	}
}
