package app

import (
	"encoding/base64"
	"testing"
)

func TestAddStep_PrependsAndFocusesFirst(t *testing.T) {
	a := newTestApp(t)
	first := a.AddStep("first")
	second := a.AddStep("second")

	state := a.Ctrl.State()
	if state.Steps[0].ID != second || state.Steps[1].ID != first {
		t.Fatal("new steps must be prepended")
	}
	// Focus lands on the first-ever step and stays there.
	if state.CurrentStepID == nil || *state.CurrentStepID != first {
		t.Fatal("focus should remain on the first added step")
	}
}

func TestAddStep_RejectsBlankTitle(t *testing.T) {
	a := newTestApp(t)
	if id := a.AddStep("   "); id != "" {
		t.Fatalf("blank title accepted: %q", id)
	}
	if got := len(a.Ctrl.State().Steps); got != 0 {
		t.Fatalf("steps = %d, want 0", got)
	}
}

func TestUpdateNotesAndTags_RequireFocus(t *testing.T) {
	a := newTestApp(t)
	a.Ctrl.UpdateNotes("nobody home")
	a.Ctrl.UpdateTags([]string{"x"})
	if got := len(a.Ctrl.State().Steps); got != 0 {
		t.Fatalf("steps = %d, want 0", got)
	}

	a.AddStep("target")
	a.Ctrl.UpdateNotes("hello")
	a.Ctrl.UpdateTags([]string{"b", "a", "b"})

	step := a.Ctrl.State().Steps[0]
	if step.Notes != "hello" {
		t.Fatalf("Notes = %q, want hello", step.Notes)
	}
	if len(step.Tags) != 2 {
		t.Fatalf("Tags = %v, want deduplicated pair", step.Tags)
	}
}

func TestStateSnapshotChainedLookups(t *testing.T) {
	a := newTestApp(t)
	id := a.AddStep("chained")

	// Lookups chain directly off the snapshot value.
	if step := a.Ctrl.State().CurrentStep(); step == nil || step.ID != id {
		t.Fatalf("CurrentStep on snapshot = %+v, want step %s", step, id)
	}
	if a.Ctrl.State().findStep(id) == nil {
		t.Fatal("findStep on snapshot returned nil")
	}

	// The returned pointer aims into the snapshot, never live state.
	a.Ctrl.State().findStep(id).Title = "scribble"
	if got := a.Ctrl.State().Steps[0].Title; got != "chained" {
		t.Fatalf("snapshot mutation leaked into live state: %q", got)
	}
}

func TestStatePersistedAfterEveryMutation(t *testing.T) {
	a := newTestApp(t)
	a.AddStep("durable")

	// A second store over the same root must already see the mutation.
	reloaded, ok := NewStore(a.Store.Root, nil).LoadAppState()
	if !ok {
		t.Fatal("state not persisted after AddStep")
	}
	if len(reloaded.Steps) != 1 || reloaded.Steps[0].Title != "durable" {
		t.Fatalf("persisted state = %+v", reloaded.Steps)
	}
}

func TestQuickNotes_PerStepLifecycle(t *testing.T) {
	a := newTestApp(t)
	id := a.AddStep("noted")

	a.Ctrl.AddQuickNote(id, "derive the formula")
	a.Ctrl.AddQuickNote(id, "five exercises")
	a.Ctrl.RemoveQuickNote(id, 0)

	notes := a.Ctrl.QuickNotes(id)
	if len(notes) != 1 || notes[0] != "five exercises" {
		t.Fatalf("notes = %v", notes)
	}

	a.DeleteStep(id)
	if got := len(a.Ctrl.QuickNotes(id)); got != 0 {
		t.Fatalf("quick notes survived step deletion: %d", got)
	}
}

func TestSampleSeed_RunsOnceAndIsConsistent(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.BackupIntervalMinutes = 0

	a := NewApplication(cfg, "", root, nil)
	state := a.Ctrl.State()
	if len(state.Steps) != 1 {
		t.Fatalf("seeded steps = %d, want 1", len(state.Steps))
	}
	if got := sessionSum(state.Steps[0]); got != state.Steps[0].TimeSpentInSeconds {
		t.Fatalf("sample sessions sum %d != TimeSpentInSeconds %d", got, state.Steps[0].TimeSpentInSeconds)
	}
	if state.TotalTimeSeconds != state.Steps[0].TimeSpentInSeconds {
		t.Fatal("sample total inconsistent with its sessions")
	}

	a.DeleteStep(state.Steps[0].ID)

	// A restart must not reseed.
	b := NewApplication(cfg, "", root, nil)
	if got := len(b.Ctrl.State().Steps); got != 0 {
		t.Fatalf("steps after restart = %d, want 0 (no reseed)", got)
	}
}

func TestBootstrapAPIKeyB64(t *testing.T) {
	a := newTestApp(t)
	encoded := base64.StdEncoding.EncodeToString([]byte("bootstrapped-key"))
	if err := a.BootstrapAPIKeyB64(encoded); err != nil {
		t.Fatalf("BootstrapAPIKeyB64: %v", err)
	}
	if !a.HasAPIKey() {
		t.Fatal("credential not active after bootstrap")
	}
	if got := a.Store.LoadAPIKey(); got != "bootstrapped-key" {
		t.Fatalf("persisted key = %q", got)
	}

	if err := a.BootstrapAPIKeyB64("%%%not-base64%%%"); err == nil {
		t.Fatal("invalid base64 accepted")
	}
}
