package app

import (
	"testing"
	"time"
)

// newTestApp builds an Application on a temp data dir with the sample
// seed disabled and backups off.
func newTestApp(t *testing.T) *Application {
	t.Helper()
	root := t.TempDir()
	NewStore(root, nil).MarkSampleSeeded()
	cfg := DefaultConfig()
	cfg.BackupIntervalMinutes = 0
	return NewApplication(cfg, "", root, nil)
}

// tickN drives n whole seconds through the running timer.
func tickN(a *Application, n int) {
	for i := 0; i < n; i++ {
		a.TickSecond()
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
