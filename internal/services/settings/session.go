package settings

import (
	"sync"
	"time"

	"github.com/phambaophuc/image-export/internal/models"
)

const maxHistory = 100

// Session is one open editing surface. It holds the current settings value
// and swaps it for a new one on every edit, so readers always see a complete
// value.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.RWMutex
	initial models.ExportSettings
	current models.ExportSettings
	history []models.ExportSettings
}

func NewSession(id string, initial models.ExportSettings) *Session {
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		initial:   initial,
		current:   initial,
	}
}

func (s *Session) Current() models.ExportSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply runs updates against the current value and commits the result as one
// write. The boolean is false when the updates left the value unchanged, in
// which case nothing is recorded for undo.
func (s *Session) Apply(updates ...Update) (models.ExportSettings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(updates)
}

// ApplyIf is Apply guarded by check. check sees the value the updates would
// run against; when it returns an error nothing is committed and the error is
// returned as is.
func (s *Session) ApplyIf(check func(models.ExportSettings) error, updates ...Update) (models.ExportSettings, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := check(s.current); err != nil {
		return s.current, false, err
	}
	next, changed := s.commit(updates)
	return next, changed, nil
}

func (s *Session) commit(updates []Update) (models.ExportSettings, bool) {
	next := Apply(s.current, updates...)
	if next == s.current {
		return s.current, false
	}

	s.history = append(s.history, s.current)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	s.current = next
	return next, true
}

// Undo restores the value before the last committed Apply.
func (s *Session) Undo() (models.ExportSettings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return s.current, false
	}
	last := len(s.history) - 1
	s.current = s.history[last]
	s.history = s.history[:last]
	return s.current, true
}

func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history) > 0
}

// Dirty reports whether the current value differs from the one the session
// was opened with.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != s.initial
}
