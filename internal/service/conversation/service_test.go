package conversation_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	model "github.com/darlyn-ai/darlyn/backend/internal/model/chat"
	chatservice "github.com/darlyn-ai/darlyn/backend/internal/service/chat"
	"github.com/darlyn-ai/darlyn/backend/internal/service/conversation"
)

type stubAnswerer struct {
	answer     string
	err        error
	textCalls  int
	imageCalls int
	lastURI    string
}

func (a *stubAnswerer) Answer(_ context.Context, question string) (string, error) {
	a.textCalls++
	return a.answer, a.err
}

func (a *stubAnswerer) AnswerImage(_ context.Context, photoDataURI, question string) (string, error) {
	a.imageCalls++
	a.lastURI = photoDataURI
	return a.answer, a.err
}

type recordingNotifier struct {
	mu      sync.Mutex
	loading []bool
	notices []string
}

func (n *recordingNotifier) LoadingChanged(loading bool) {
	n.mu.Lock()
	n.loading = append(n.loading, loading)
	n.mu.Unlock()
}

func (n *recordingNotifier) Notice(message string) {
	n.mu.Lock()
	n.notices = append(n.notices, message)
	n.mu.Unlock()
}

func setup(answerer conversation.Answerer) (*conversation.Service, *chatservice.Service, *recordingNotifier) {
	sessions := chatservice.NewService(nil)
	notifier := &recordingNotifier{}
	return conversation.NewService(sessions, answerer, notifier), sessions, notifier
}

func TestSubmitEmptyIsRejected(t *testing.T) {
	svc, sessions, _ := setup(&stubAnswerer{answer: "hi"})

	if _, _, err := svc.Submit(context.Background(), "   ", ""); !errors.Is(err, conversation.ErrEmptySubmit) {
		t.Fatalf("expected ErrEmptySubmit, got %v", err)
	}
	if len(sessions.List()) != 0 {
		t.Fatal("empty submit must not create a session")
	}
}

func TestSubmitCreatesSessionAndAppendsExchange(t *testing.T) {
	answerer := &stubAnswerer{answer: "the answer"}
	svc, sessions, _ := setup(answerer)

	reply, sessionID, err := svc.Submit(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if reply.Role != model.RoleAssistant || reply.Content != "the answer" || reply.IsError {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if svc.ActiveID() != sessionID {
		t.Fatal("submit must activate the created session")
	}

	session, ok := sessions.Get(sessionID)
	if !ok {
		t.Fatal("session missing")
	}
	if len(session.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(session.Messages))
	}
	if session.Messages[0].Role != model.RoleUser || session.Messages[0].Content != "hi" {
		t.Fatalf("unexpected user message: %+v", session.Messages[0])
	}
	if answerer.textCalls != 1 || answerer.imageCalls != 0 {
		t.Fatalf("expected exactly one text call, got text=%d image=%d", answerer.textCalls, answerer.imageCalls)
	}
}

func TestSubmitImageDispatchesImageCapabilityOnly(t *testing.T) {
	answerer := &stubAnswerer{answer: "a cat"}
	svc, sessions, _ := setup(answerer)

	uri := "data:image/png;base64,aGk="
	_, sessionID, err := svc.Submit(context.Background(), "what is this?", uri)
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if answerer.imageCalls != 1 || answerer.textCalls != 0 {
		t.Fatalf("expected exactly one image call, got text=%d image=%d", answerer.textCalls, answerer.imageCalls)
	}
	if answerer.lastURI != uri {
		t.Fatalf("image capability received wrong uri: %q", answerer.lastURI)
	}

	session, _ := sessions.Get(sessionID)
	if session.Messages[0].ImageURL != uri {
		t.Fatal("user message must carry the image data URI")
	}
}

func TestSubmitFailureAppendsApology(t *testing.T) {
	answerer := &stubAnswerer{err: errors.New("provider exploded")}
	svc, sessions, notifier := setup(answerer)

	reply, sessionID, err := svc.Submit(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if !reply.IsError {
		t.Fatal("expected IsError on the synthetic reply")
	}
	if reply.Content != "I'm sorry, I encountered an error. Please try again." {
		t.Fatalf("unexpected apology text: %q", reply.Content)
	}

	session, _ := sessions.Get(sessionID)
	if len(session.Messages) != 2 {
		t.Fatalf("expected user message + apology, got %d messages", len(session.Messages))
	}
	if session.Messages[0].Role != model.RoleUser || session.Messages[0].Content != "hi" {
		t.Fatal("user message must not be rolled back on failure")
	}

	if svc.Loading() {
		t.Fatal("loading must return to false")
	}
	if len(notifier.notices) != 1 {
		t.Fatalf("expected one notice, got %v", notifier.notices)
	}
	if strings.Contains(notifier.notices[0], "exploded") {
		t.Fatal("raw error detail must not reach the user")
	}
	if len(notifier.loading) != 2 || !notifier.loading[0] || notifier.loading[1] {
		t.Fatalf("expected loading true then false, got %v", notifier.loading)
	}
}

func TestAutoTitleAfterFirstExchange(t *testing.T) {
	answerer := &stubAnswerer{answer: "sure"}
	svc, sessions, _ := setup(answerer)

	_, sessionID, err := svc.Submit(context.Background(), "please plan a long weekend trip", "")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	session, _ := sessions.Get(sessionID)
	if session.Title != "please plan a long..." {
		t.Fatalf("unexpected title: %q", session.Title)
	}

	// A later exchange must not retitle.
	if _, _, err := svc.Submit(context.Background(), "something entirely different now", ""); err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	session, _ = sessions.Get(sessionID)
	if session.Title != "please plan a long..." {
		t.Fatalf("title retriggered: %q", session.Title)
	}
}

func TestAutoTitleSkippedWhenRenamed(t *testing.T) {
	answerer := &stubAnswerer{answer: "ok"}
	svc, sessions, _ := setup(answerer)

	session := svc.NewSession()
	sessions.Rename(session.ID, "my own title")

	if _, _, err := svc.Submit(context.Background(), "hello over there friend", ""); err != nil {
		t.Fatalf("Submit err: %v", err)
	}

	got, _ := sessions.Get(session.ID)
	if got.Title != "my own title" {
		t.Fatalf("manual title overwritten: %q", got.Title)
	}
}

func TestAutoTitleShortMessageNoEllipsis(t *testing.T) {
	answerer := &stubAnswerer{answer: "ok"}
	svc, sessions, _ := setup(answerer)

	_, sessionID, _ := svc.Submit(context.Background(), "hi there", "")

	session, _ := sessions.Get(sessionID)
	if session.Title != "hi there" {
		t.Fatalf("unexpected title: %q", session.Title)
	}
}

func TestSubmitReusesActiveSession(t *testing.T) {
	answerer := &stubAnswerer{answer: "ok"}
	svc, sessions, _ := setup(answerer)

	_, firstID, _ := svc.Submit(context.Background(), "one", "")
	_, secondID, _ := svc.Submit(context.Background(), "two", "")

	if firstID != secondID {
		t.Fatal("second submit must reuse the active session")
	}
	session, _ := sessions.Get(firstID)
	if len(session.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(session.Messages))
	}
}

func TestDeleteActiveSessionClearsPointer(t *testing.T) {
	answerer := &stubAnswerer{answer: "ok"}
	svc, _, _ := setup(answerer)

	session := svc.NewSession()
	if svc.ActiveID() != session.ID {
		t.Fatal("NewSession must activate")
	}

	svc.DeleteSession(session.ID)
	if svc.ActiveID() != "" {
		t.Fatal("deleting the active session must clear the pointer")
	}
}

func TestDeleteOtherSessionKeepsPointer(t *testing.T) {
	answerer := &stubAnswerer{answer: "ok"}
	svc, _, _ := setup(answerer)

	other := svc.NewSession()
	active := svc.NewSession()

	svc.DeleteSession(other.ID)
	if svc.ActiveID() != active.ID {
		t.Fatal("deleting another session must keep the active pointer")
	}
}

func TestSubmitWithoutAnswererFailsGracefully(t *testing.T) {
	sessions := chatservice.NewService(nil)
	svc := conversation.NewService(sessions, nil, nil)

	reply, _, err := svc.Submit(context.Background(), "hi", "")
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if !reply.IsError {
		t.Fatal("missing answerer must take the failure path")
	}
}
