package app

import (
	"testing"
	"time"
)

func TestSaveBackup_WritesSingleSlot(t *testing.T) {
	a := newTestApp(t)
	a.AddStep("snapshot me")
	a.Ctrl.AppendMessage(RoleUser, "hello", false)

	a.SaveBackup()
	first, ok := a.Store.LoadBackup()
	if !ok {
		t.Fatal("backup slot empty after SaveBackup")
	}
	if len(first.AppState.Steps) != 1 || len(first.ChatHistory) != 1 {
		t.Fatalf("backup = %+v, want 1 step and 1 message", first)
	}
	if first.Settings.HistoryLimit != a.Config.HistoryLimit {
		t.Fatal("backup settings do not match config")
	}

	// The slot is overwritten, not appended.
	a.AddStep("second")
	a.SaveBackup()
	second, _ := a.Store.LoadBackup()
	if len(second.AppState.Steps) != 2 {
		t.Fatalf("backup steps = %d, want 2 after overwrite", len(second.AppState.Steps))
	}
}

func TestBackupInterval(t *testing.T) {
	a := newTestApp(t)

	a.Config.BackupIntervalMinutes = 0
	if got := a.BackupInterval(); got != 0 {
		t.Fatalf("interval = %v, want disabled", got)
	}
	a.Config.BackupIntervalMinutes = -3
	if got := a.BackupInterval(); got != 0 {
		t.Fatalf("interval = %v, want disabled for negatives", got)
	}
	a.Config.BackupIntervalMinutes = 10
	if got := a.BackupInterval(); got != 10*time.Minute {
		t.Fatalf("interval = %v, want 10m", got)
	}
}
