package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	model "github.com/darlyn-ai/darlyn/backend/internal/model/chat"
	"github.com/darlyn-ai/darlyn/backend/internal/store"
)

// ErrSessionNotFound reports a lookup against a session id that no longer
// exists. Mutations never return it; missing ids are silent no-ops there.
var ErrSessionNotFound = errors.New("session not found")

// Service owns the ordered session collection, newest-created-first. Every
// committed mutation persists the whole list to the chat history slot;
// persistence failures never surface because the in-memory list stays
// authoritative for the life of the process.
type Service struct {
	mu       sync.RWMutex
	sessions []model.Session
	store    *store.Store
}

// NewService loads existing history from the store and owns it from there on.
// A nil store keeps the repository purely in-memory, which the tests use.
func NewService(st *store.Store) *Service {
	s := &Service{store: st}
	if st != nil {
		var stored []model.Session
		if st.Load(store.SlotChatHistory, &stored) {
			s.sessions = stored
		}
	}
	return s
}

// List returns the sessions newest-created-first. The result is detached from
// internal state.
func (s *Service) List() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]model.Session, len(s.sessions))
	for i, session := range s.sessions {
		copied[i] = session.Clone()
	}
	return copied
}

// Get retrieves a single session by id.
func (s *Service) Get(id string) (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.ID == id {
			return session.Clone(), true
		}
	}
	return model.Session{}, false
}

// Create provisions an empty session with the default title and inserts it at
// the front of the list.
func (s *Service) Create() model.Session {
	session := model.Session{
		ID:        uuid.NewString(),
		Title:     model.DefaultTitle,
		Messages:  make([]model.Message, 0, 16),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions = append([]model.Session{session}, s.sessions...)
	s.persistLocked()
	s.mu.Unlock()

	return session.Clone()
}

// Rename replaces a session title. Unknown ids are a silent no-op.
func (s *Service) Rename(id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions[i].Title = title
			s.persistLocked()
			return
		}
	}
}

// Delete removes a session and its messages atomically. Unknown ids are a
// silent no-op.
func (s *Service) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// Append adds a message to a session's history in call order. The id and
// timestamp are filled in when the caller left them zero. Unknown session ids
// are a silent no-op; callers are expected to have validated the session.
func (s *Service) Append(sessionID string, message model.Message) {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			s.sessions[i].Messages = append(s.sessions[i].Messages, message)
			s.persistLocked()
			return
		}
	}
}

// persistLocked snapshots the list into the chat history slot. Callers hold
// the write lock.
func (s *Service) persistLocked() {
	if s.store == nil {
		return
	}
	s.store.Save(store.SlotChatHistory, s.sessions)
}
