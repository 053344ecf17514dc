package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Application wires the store, the state controller, the timekeeping
// engine and the chat pipeline together and exposes the commands the
// presentation layer calls. Timer commands are confined to the UI event
// loop; only SendMessage resolves on a separate goroutine, and it only
// touches the mutex-guarded controller and pipeline settings.
type Application struct {
	Store    *Store
	Ctrl     *Controller
	Engine   *Engine
	Pipeline *Pipeline

	Config     Config
	ConfigPath string
	Log        *zap.Logger
}

func NewApplication(cfg Config, configPath, dataRoot string, log *zap.Logger) *Application {
	if log == nil {
		log = zap.NewNop()
	}
	store := NewStore(dataRoot, log)
	ctrl := NewController(store, log)
	client := NewChatClient(cfg.Model, cfg.BaseURL, cfg.MaxTokens)
	pipeline := NewPipeline(ctrl, client, store.LoadAPIKey(), cfg.HistoryLimit, ParseProfile(cfg.PromptProfile), log)

	a := &Application{
		Store:      store,
		Ctrl:       ctrl,
		Engine:     NewEngine(),
		Pipeline:   pipeline,
		Config:     cfg,
		ConfigPath: configPath,
		Log:        log,
	}
	a.seedSampleOnce()
	return a
}

func (a *Application) seedSampleOnce() {
	if a.Store.SampleSeeded() {
		return
	}
	if len(a.Ctrl.State().Steps) > 0 {
		a.Store.MarkSampleSeeded()
		return
	}
	sample := sampleState(time.Now())
	a.Ctrl.ReplaceFromImport(&sample, nil)
	a.Store.MarkSampleSeeded()
	a.Log.Info("seeded sample state")
}

// finalizeAndCommit converts any active session into a committed record.
func (a *Application) finalizeAndCommit() {
	if commit, ok := a.Engine.Finalize(); ok {
		a.Ctrl.CommitSession(commit)
	}
}

// StartTimer begins ticking against the focused step. With nothing
// focused it is a no-op.
func (a *Application) StartTimer() {
	step := a.currentStep()
	if step == nil {
		return
	}
	a.Engine.Start(step.ID)
}

// PauseTimer commits the in-progress interval and zeroes the counter.
func (a *Application) PauseTimer() {
	a.Engine.Pause()
	a.finalizeAndCommit()
	a.Engine.Reset()
}

// ResetTimer discards uncommitted time. The session marker survives, so
// a later pause still closes the session it opened.
func (a *Application) ResetTimer() {
	a.Engine.Reset()
}

func (a *Application) SetPreset(seconds int) {
	a.Engine.SetPreset(seconds)
}

// TickSecond is the per-second tick: one increment on the visible
// counter, one second onto the lifetime total.
func (a *Application) TickSecond() {
	if a.Engine.Tick() {
		a.Ctrl.AddSecond()
	}
}

// SelectStep switches focus, committing any running session first.
// Selecting the already focused step is a no-op.
func (a *Application) SelectStep(id string) {
	state := a.Ctrl.State()
	if state.CurrentStepID != nil && *state.CurrentStepID == id {
		return
	}
	a.finalizeAndCommit()
	a.Engine.Reset()
	a.Ctrl.SetCurrentStep(id)
}

func (a *Application) AddStep(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return a.Ctrl.AddStep(title)
}

// DeleteStep removes a step. Deleting the focused step commits its
// in-progress time first; deleting any other step never touches the
// timer.
func (a *Application) DeleteStep(id string) {
	state := a.Ctrl.State()
	if state.CurrentStepID != nil && *state.CurrentStepID == id {
		a.Engine.Pause()
		a.finalizeAndCommit()
		a.Engine.Reset()
	}
	a.Ctrl.RemoveStep(id)
}

func (a *Application) currentStep() *LearningStep {
	state := a.Ctrl.State()
	return state.CurrentStep()
}

// SendMessage delivers a chat prompt tied to the focused step.
func (a *Application) SendMessage(ctx context.Context, content string) error {
	title := ""
	if step := a.currentStep(); step != nil {
		title = step.Title
	}
	return a.Pipeline.SendMessage(ctx, content, title)
}

func (a *Application) HasAPIKey() bool {
	return strings.TrimSpace(a.Pipeline.APIKey()) != ""
}

// SetAPIKey persists the credential and hands it to the pipeline.
func (a *Application) SetAPIKey(key string) {
	key = strings.TrimSpace(key)
	a.Store.SaveAPIKey(key)
	a.Pipeline.SetAPIKey(key)
}

// BootstrapAPIKeyB64 is the one-time bootstrap channel: a base64
// credential handed in from outside, decoded and persisted. The caller
// drops the encoded value afterwards.
func (a *Application) BootstrapAPIKeyB64(encoded string) error {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return fmt.Errorf("invalid base64 credential: %w", err)
	}
	key := strings.TrimSpace(string(decoded))
	if key == "" {
		return errors.New("empty credential")
	}
	a.SetAPIKey(key)
	return nil
}

func (a *Application) exportSettings() ExportSettings {
	return ExportSettings{
		Theme:         a.Config.Theme,
		PromptProfile: a.Config.PromptProfile,
		HistoryLimit:  a.Config.HistoryLimit,
	}
}

func (a *Application) ExportJSON() ([]byte, error) {
	return exportJSON(a.Ctrl.State(), a.Ctrl.Messages(), a.exportSettings())
}

func (a *Application) ExportMarkdown() string {
	return exportMarkdown(a.Ctrl.State(), time.Now())
}

func (a *Application) ExportChat() ([]byte, error) {
	return exportChat(a.Ctrl.Messages(), time.Now())
}

// ReadImport loads and parses an import file without applying it, so
// the caller can ask for confirmation first.
func (a *Application) ReadImport(path string) (*ImportPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseImport(data)
}

// ApplyImport replaces state, conversation and selected settings
// wholesale. Any running session is discarded, marker included, so a
// later start cannot commit against a pre-import step id.
func (a *Application) ApplyImport(payload *ImportPayload) {
	if payload == nil {
		return
	}
	a.Engine.Pause()
	a.Engine.Finalize()
	a.Engine.Reset()
	a.Ctrl.ReplaceFromImport(payload.AppState, payload.ChatHistory)
	if payload.Settings != nil {
		if payload.Settings.Theme != "" {
			a.Config.Theme = payload.Settings.Theme
		}
		if payload.Settings.PromptProfile != "" {
			a.SetProfile(ParseProfile(payload.Settings.PromptProfile))
		}
		if payload.Settings.HistoryLimit != nil {
			a.SetHistoryLimit(*payload.Settings.HistoryLimit)
		}
		a.persistConfig()
	}
}

func (a *Application) SetProfile(profile PromptProfile) {
	a.Config.PromptProfile = string(profile)
	a.Pipeline.SetProfile(profile)
	a.persistConfig()
}

func (a *Application) SetHistoryLimit(limit int) {
	limit = clampHistoryLimit(limit)
	a.Config.HistoryLimit = limit
	a.Pipeline.SetHistoryLimit(limit)
	a.persistConfig()
}

func (a *Application) SetTheme(theme string) {
	a.Config.Theme = theme
	a.persistConfig()
}

func (a *Application) SetBackupInterval(minutes int) {
	a.Config.BackupIntervalMinutes = minutes
	a.persistConfig()
}

func (a *Application) persistConfig() {
	if a.ConfigPath == "" {
		return
	}
	if err := SaveConfig(a.Config, a.ConfigPath); err != nil {
		a.Log.Warn("config save failed", zap.Error(err))
	}
}
