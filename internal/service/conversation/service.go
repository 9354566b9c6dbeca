package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	model "github.com/darlyn-ai/darlyn/backend/internal/model/chat"
	chatservice "github.com/darlyn-ai/darlyn/backend/internal/service/chat"
)

// errorReply is the fixed apology appended in place of an assistant reply when
// the answering capability fails. Raw error detail never reaches the user.
const errorReply = "I'm sorry, I encountered an error. Please try again."

// errorNotice is the generic transient notification pushed to the UI on the
// same failure.
const errorNotice = "There was a problem communicating with the AI. Please try again."

var (
	// ErrEmptySubmit reports a turn with neither text nor image.
	ErrEmptySubmit = errors.New("nothing to submit")
)

// Answerer is the pair of external answering capabilities. Failures are
// opaque; every error is handled the same way.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
	AnswerImage(ctx context.Context, photoDataURI, question string) (string, error)
}

// Notifier receives the UI-facing side effects of a turn.
type Notifier interface {
	LoadingChanged(loading bool)
	Notice(message string)
}

// Service turns one submitted user input into a completed exchange: optimistic
// user message, exactly one capability call, assistant reply or synthetic
// error message, then the auto-title check. It also owns the active-session
// pointer and the loading flag the UI observes.
type Service struct {
	mu       sync.Mutex
	activeID string
	loading  bool

	sessions *chatservice.Service
	answerer Answerer
	notifier Notifier
}

// NewService wires the orchestrator. The answerer may be nil when no model is
// configured; every turn then takes the failure path. The notifier may be nil
// in tests.
func NewService(sessions *chatservice.Service, answerer Answerer, notifier Notifier) *Service {
	return &Service{
		sessions: sessions,
		answerer: answerer,
		notifier: notifier,
	}
}

// Submit runs one user turn to completion. The returned message is the
// assistant reply, which carries IsError when the capability failed; the turn
// itself still completes and the user message stays in history.
func (s *Service) Submit(ctx context.Context, text, imageDataURI string) (model.Message, string, error) {
	if strings.TrimSpace(text) == "" && imageDataURI == "" {
		return model.Message{}, "", ErrEmptySubmit
	}

	sessionID := s.ensureActiveSession()

	s.sessions.Append(sessionID, model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Content:   text,
		ImageURL:  imageDataURI,
		CreatedAt: time.Now().UTC(),
	})
	s.setLoading(true)
	defer s.setLoading(false)

	var content string
	var err error
	if imageDataURI != "" {
		content, err = s.answerImage(ctx, imageDataURI, text)
	} else {
		content, err = s.answerText(ctx, text)
	}

	reply := model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		CreatedAt: time.Now().UTC(),
	}

	if err != nil {
		log.Printf("[conversation] answer failed for session=%s: %v", sessionID, err)
		reply.Content = errorReply
		reply.IsError = true
		s.sessions.Append(sessionID, reply)
		if s.notifier != nil {
			s.notifier.Notice(errorNotice)
		}
		return reply, sessionID, nil
	}

	reply.Content = content
	s.sessions.Append(sessionID, reply)
	s.maybeTitle(sessionID)
	return reply, sessionID, nil
}

// NewSession creates a session and makes it active.
func (s *Service) NewSession() model.Session {
	session := s.sessions.Create()

	s.mu.Lock()
	s.activeID = session.ID
	s.mu.Unlock()

	return session
}

// Activate selects an existing session. Unknown ids are rejected.
func (s *Service) Activate(id string) bool {
	if _, ok := s.sessions.Get(id); !ok {
		return false
	}

	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
	return true
}

// ActiveID returns the active session id, or "" when none is selected.
func (s *Service) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Loading reports whether a turn is in flight.
func (s *Service) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// DeleteSession removes a session and clears the active pointer when it
// pointed at the deleted session.
func (s *Service) DeleteSession(id string) {
	s.sessions.Delete(id)

	s.mu.Lock()
	if s.activeID == id {
		s.activeID = ""
	}
	s.mu.Unlock()
}

// ensureActiveSession returns the active session id, creating and activating
// a fresh session when none is selected or the selected one was deleted.
func (s *Service) ensureActiveSession() string {
	s.mu.Lock()
	active := s.activeID
	s.mu.Unlock()

	if active != "" {
		if _, ok := s.sessions.Get(active); ok {
			return active
		}
	}
	return s.NewSession().ID
}

func (s *Service) answerText(ctx context.Context, question string) (string, error) {
	if s.answerer == nil {
		return "", errors.New("no answering capability configured")
	}
	return s.answerer.Answer(ctx, question)
}

func (s *Service) answerImage(ctx context.Context, photoDataURI, question string) (string, error) {
	if s.answerer == nil {
		return "", errors.New("no answering capability configured")
	}
	return s.answerer.AnswerImage(ctx, photoDataURI, question)
}

func (s *Service) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.LoadingChanged(loading)
	}
}

// maybeTitle derives a title from the first user message once the first
// exchange completes. The sentinel check keeps it from ever running twice.
func (s *Service) maybeTitle(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || len(session.Messages) != 2 || session.Title != model.DefaultTitle {
		return
	}

	var firstUser string
	for _, msg := range session.Messages {
		if msg.Role == model.RoleUser {
			firstUser = msg.Content
			break
		}
	}

	if title := model.DeriveTitle(firstUser); title != "" {
		s.sessions.Rename(sessionID, title)
	}
}
