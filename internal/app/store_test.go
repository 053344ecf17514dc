package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStore_LegacyMigration(t *testing.T) {
	root := t.TempDir()
	legacy := AppState{
		Steps: []LearningStep{
			{ID: "s1", Title: "legacy step", CreatedAt: "2025-01-01T00:00:00Z", Tags: []string{"old"}, Sessions: []TimerSession{}},
		},
		TotalTimeSeconds: 42,
	}
	raw, _ := json.Marshal(legacy)
	if err := os.WriteFile(filepath.Join(root, keyAppStateLegacy), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(root, nil)
	first, ok := store.LoadAppState()
	if !ok {
		t.Fatal("legacy document not loaded")
	}

	// Migration rewrites under the current key as a versioned envelope.
	b, err := os.ReadFile(filepath.Join(root, keyAppState))
	if err != nil {
		t.Fatalf("current-version key not written: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatal(err)
	}
	if env.Version != envelopeVersion {
		t.Fatalf("envelope version = %d, want %d", env.Version, envelopeVersion)
	}

	second, ok := store.LoadAppState()
	if !ok {
		t.Fatal("migrated document not loaded on second read")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("reload differs after migration:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestStore_CorruptDocumentIsAbsent(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, keyAppState), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(root, nil)
	state, ok := store.LoadAppState()
	if ok {
		t.Fatal("corrupt document reported as present")
	}
	if len(state.Steps) != 0 {
		t.Fatalf("expected default state, got %+v", state)
	}
}

func TestStore_UnknownEnvelopeVersionIsAbsent(t *testing.T) {
	root := t.TempDir()
	payload := []byte(`{"version":99,"data":{"steps":[]}}`)
	if err := os.WriteFile(filepath.Join(root, keyAppState), payload, 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(root, nil)
	if _, ok := store.LoadAppState(); ok {
		t.Fatal("future envelope version accepted")
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	id := "s1"
	state := AppState{
		Steps: []LearningStep{
			{ID: id, Title: "t", CreatedAt: "2025-06-01T10:00:00Z", Tags: []string{"a"}, Sessions: []TimerSession{}},
		},
		CurrentStepID:    &id,
		QuestionsAsked:   3,
		TotalTimeSeconds: 60,
	}
	store.SaveAppState(state)
	got, ok := store.LoadAppState()
	if !ok {
		t.Fatal("saved state not loadable")
	}
	if !reflect.DeepEqual(state, got) {
		t.Fatalf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", state, got)
	}
}

func TestStore_ChatHistoryMigration(t *testing.T) {
	root := t.TempDir()
	legacy := []ChatMessage{
		{ID: "m1", Role: RoleUser, Content: "hi", CreatedAt: "2025-01-01T00:00:00Z"},
		{ID: "", Role: RoleAssistant, Content: "dropped"},
	}
	raw, _ := json.Marshal(legacy)
	if err := os.WriteFile(filepath.Join(root, keyChatLegacy), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(root, nil)
	got := store.LoadChatHistory()
	if len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("messages = %+v, want only m1", got)
	}
	if _, err := os.Stat(filepath.Join(root, keyChat)); err != nil {
		t.Fatalf("migrated chat key not written: %v", err)
	}
}

func TestStore_APIKeyRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	if store.LoadAPIKey() != "" {
		t.Fatal("expected empty key on fresh store")
	}
	store.SaveAPIKey("  secret-token \n")
	if got := store.LoadAPIKey(); got != "secret-token" {
		t.Fatalf("LoadAPIKey = %q, want trimmed secret-token", got)
	}
}
