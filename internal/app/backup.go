package app

import "time"

// Backup is the single-slot snapshot written by the backup scheduler.
type Backup struct {
	SavedAt     string         `json:"savedAt"`
	AppState    AppState       `json:"appState"`
	ChatHistory []ChatMessage  `json:"chatHistory"`
	Settings    ExportSettings `json:"settings"`
}

// SaveBackup snapshots state, conversation and settings into the one
// overwritten backup slot. Stateless and idempotent; store failures are
// swallowed by the store layer.
func (a *Application) SaveBackup() {
	a.Store.SaveBackup(Backup{
		SavedAt:     time.Now().Format(time.RFC3339),
		AppState:    a.Ctrl.State(),
		ChatHistory: a.Ctrl.Messages(),
		Settings:    a.exportSettings(),
	})
}

// BackupInterval returns the scheduler period, or 0 when backups are
// disabled.
func (a *Application) BackupInterval() time.Duration {
	minutes := a.Config.BackupIntervalMinutes
	if minutes <= 0 {
		return 0
	}
	return time.Duration(minutes) * time.Minute
}
