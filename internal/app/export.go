package app

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExportSettings is the settings subset that travels with exports.
type ExportSettings struct {
	Theme         string `json:"theme"`
	PromptProfile string `json:"promptProfile"`
	HistoryLimit  int    `json:"historyLimit"`
}

// ExportPayload is the full-board JSON export shape.
type ExportPayload struct {
	Version     int            `json:"version"`
	AppState    AppState       `json:"appState"`
	ChatHistory []ChatMessage  `json:"chatHistory"`
	Settings    ExportSettings `json:"settings"`
}

// ChatExport is the standalone chat-only export shape.
type ChatExport struct {
	ExportedAt  string        `json:"exportedAt"`
	ChatHistory []ChatMessage `json:"chatHistory"`
}

// ImportPayload mirrors ExportPayload with every field optional, so
// partial or hand-trimmed files still import.
type ImportPayload struct {
	AppState    *AppState       `json:"appState"`
	ChatHistory []ChatMessage   `json:"chatHistory"`
	Settings    *ImportSettings `json:"settings"`
}

// ImportSettings keeps HistoryLimit as a pointer so an absent field is
// distinguishable from an explicit zero.
type ImportSettings struct {
	Theme         string `json:"theme"`
	PromptProfile string `json:"promptProfile"`
	HistoryLimit  *int   `json:"historyLimit"`
}

func exportJSON(state AppState, messages []ChatMessage, settings ExportSettings) ([]byte, error) {
	return json.MarshalIndent(ExportPayload{
		Version:     1,
		AppState:    state,
		ChatHistory: messages,
		Settings:    settings,
	}, "", "  ")
}

func exportChat(messages []ChatMessage, now time.Time) ([]byte, error) {
	return json.MarshalIndent(ChatExport{
		ExportedAt:  now.Format(time.RFC3339),
		ChatHistory: messages,
	}, "", "  ")
}

// exportMarkdown renders each step's title, tags, rounded minutes and
// notes.
func exportMarkdown(state AppState, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Learning Board Export\n\n")
	fmt.Fprintf(&b, "Exported: %s\n\n", now.Format("2006-01-02 15:04"))
	for _, step := range state.Steps {
		fmt.Fprintf(&b, "## %s\n", step.Title)
		if len(step.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(step.Tags, ", "))
		}
		minutes := (step.TimeSpentInSeconds + 30) / 60
		fmt.Fprintf(&b, "Time: %d minutes\n\n", minutes)
		if step.Notes != "" {
			b.WriteString(step.Notes)
			b.WriteString("\n\n")
		} else {
			b.WriteString("_No notes_\n\n")
		}
	}
	return b.String()
}

// ParseImport decodes an import file. Unparseable input returns an
// error; the caller aborts with no partial state change.
func ParseImport(data []byte) (*ImportPayload, error) {
	var payload ImportPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unreadable import file: %w", err)
	}
	return &payload, nil
}
