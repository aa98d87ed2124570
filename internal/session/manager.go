package session

import (
	"context"
	"sync"
	"time"

	"resumechat/internal/conversation"
	"resumechat/internal/errors"

	"github.com/google/uuid"
)

// finalSaveTimeout bounds the save that clears the processing flag after an event
const finalSaveTimeout = 5 * time.Second

// Starter creates a fresh session for an id
type Starter interface {
	Start(id string) *conversation.Session
}

// Manager owns session lifecycle on top of a Store. Events for one session are
// serialized; a second event arriving while one runs is rejected as busy.
// Only sessions with an event in flight hold an entry in locks.
type Manager struct {
	store   Store
	starter Starter
	logger  *errors.Logger

	mu    sync.Mutex
	locks map[string]struct{}
}

// NewManager creates a session manager
func NewManager(store Store, starter Starter, logger *errors.Logger) *Manager {
	if logger == nil {
		logger = errors.Discard()
	}
	return &Manager{
		store:   store,
		starter: starter,
		logger:  logger,
		locks:   make(map[string]struct{}),
	}
}

// StoreKind reports which backend holds the sessions
func (m *Manager) StoreKind() string {
	return m.store.Kind()
}

// Create starts and stores a new session with a random id
func (m *Manager) Create(ctx context.Context) (*conversation.Session, error) {
	s := m.starter.Start(uuid.NewString())
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	m.logger.Info("Session created", "session_id", s.ID, "policy", s.Policy)
	return s, nil
}

// Get loads a session without locking it
func (m *Manager) Get(ctx context.Context, id string) (*conversation.Session, error) {
	return m.store.Load(ctx, id)
}

// Update runs fn against the stored session and saves the result, even when
// fn fails or ctx is cancelled. The stored copy is marked as processing while
// fn runs so other instances sharing the store see the session as busy.
func (m *Manager) Update(ctx context.Context, id string, fn func(*conversation.Session) error) (*conversation.Session, error) {
	if !m.acquire(id) {
		return nil, busy(id)
	}
	defer m.release(id)

	s, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Processing {
		return nil, busy(id)
	}

	marked := *s
	marked.Processing = true
	if err := m.store.Save(ctx, &marked); err != nil {
		return nil, err
	}

	fnErr := fn(s)

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalSaveTimeout)
	defer cancel()

	s.Processing = false
	if err := m.store.Save(saveCtx, s); err != nil {
		m.logger.LogError(err, "Failed to save session", "session_id", id)
		return nil, err
	}
	return s, fnErr
}

// Delete removes a session
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := m.store.Load(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	m.logger.Info("Session deleted", "session_id", id)
	return nil
}

// Close closes the underlying store
func (m *Manager) Close() error {
	return m.store.Close()
}

// acquire claims the event slot of a session, reporting false when one is already running
func (m *Manager) acquire(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.locks[id]; held {
		return false
	}
	m.locks[id] = struct{}{}
	return true
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
}

func busy(id string) error {
	return errors.NewStateError(errors.ErrCodeSessionBusy, "session is busy processing another request", nil).
		WithContext("session_id", id)
}
