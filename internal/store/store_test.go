package store_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	chat "github.com/darlyn-ai/darlyn/backend/internal/model/chat"
	"github.com/darlyn-ai/darlyn/backend/internal/store"
)

func TestLoadMissingSlot(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	var out []chat.Session
	if st.Load(store.SlotChatHistory, &out) {
		t.Fatal("expected absent slot")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sessions := []chat.Session{
		{
			ID:    "s1",
			Title: "hello world",
			Messages: []chat.Message{
				{ID: "m1", Role: chat.RoleUser, Content: "hello", CreatedAt: created},
				{ID: "m2", Role: chat.RoleAssistant, Content: "**hi**", CreatedAt: created},
			},
			CreatedAt: created,
		},
		{ID: "s2", Title: chat.DefaultTitle, CreatedAt: created},
	}

	st.Save(store.SlotChatHistory, sessions)

	var loaded []chat.Session
	if !st.Load(store.SlotChatHistory, &loaded) {
		t.Fatal("expected slot to exist after save")
	}
	if !reflect.DeepEqual(sessions, loaded) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, sessions)
	}
}

func TestLoadCorruptSlot(t *testing.T) {
	dir := t.TempDir()
	st, err := store.New(dir)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, store.SlotUserProfile+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt slot: %v", err)
	}

	var out map[string]string
	if st.Load(store.SlotUserProfile, &out) {
		t.Fatal("corrupt slot must behave as absent")
	}
}

func TestSaveOverwrites(t *testing.T) {
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("New err: %v", err)
	}

	st.Save(store.SlotUserProfile, map[string]string{"name": "Ada"})
	st.Save(store.SlotUserProfile, map[string]string{"name": "Grace"})

	var out map[string]string
	if !st.Load(store.SlotUserProfile, &out) {
		t.Fatal("expected slot to exist")
	}
	if out["name"] != "Grace" {
		t.Fatalf("expected latest value, got %q", out["name"])
	}
}
