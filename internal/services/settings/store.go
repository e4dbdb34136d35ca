package settings

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/phambaophuc/image-export/internal/models"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("settings session not found")

// Store keeps the open editing sessions in memory. Nothing is persisted;
// closing a session discards its settings.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Open starts a session with the default settings.
func (st *Store) Open() *Session {
	sess := NewSession(uuid.New().String(), models.DefaultExportSettings())

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	st.logger.Info("Settings session opened", zap.String("session_id", sess.ID))
	return sess
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (st *Store) Close(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)

	st.logger.Info("Settings session closed", zap.String("session_id", id))
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
