package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store is the file-backed key/value persistence layer. Each logical
// document lives in its own JSON file under Root, wrapped in a versioned
// envelope. Load and Save never return errors to callers: a missing or
// corrupt document degrades to "absent" and a failed write is a no-op,
// so the app always prefers a default over crashing at startup.
//
// Layout:
//
//	<root>/app_state_v2.json     current state document (envelope)
//	<root>/app_state.json        legacy unversioned state, migrated once
//	<root>/chat_history_v2.json  current conversation (envelope)
//	<root>/chat_history.json     legacy unversioned conversation
//	<root>/api_key               raw credential string
//	<root>/backup.json           single overwritten backup slot
//	<root>/quick_notes.json      per-step quick notes (envelope)
//	<root>/sample_seeded         marker file for the first-run sample
type Store struct {
	Root string

	log *zap.Logger
	now func() time.Time
}

const envelopeVersion = 2

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

const (
	keyAppState       = "app_state_v2.json"
	keyAppStateLegacy = "app_state.json"
	keyChat           = "chat_history_v2.json"
	keyChatLegacy     = "chat_history.json"
	keyAPIKey         = "api_key"
	keyBackup         = "backup.json"
	keyQuickNotes     = "quick_notes.json"
	keySampleSeeded   = "sample_seeded"
)

// DefaultDataRoot prefers the XDG data dir and falls back to
// ~/.local/share, then the system temp dir.
func DefaultDataRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "studyboard")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "studyboard")
	}
	return filepath.Join(os.TempDir(), "studyboard")
}

func NewStore(root string, log *zap.Logger) *Store {
	if strings.TrimSpace(root) == "" {
		root = DefaultDataRoot()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Root: root, log: log, now: time.Now}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Root, key)
}

// readEnvelope decodes <key> into out, accepting only the current
// envelope version. Returns false for missing, corrupt, or mismatched
// documents.
func (s *Store) readEnvelope(key string, out any) bool {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		s.log.Warn("discarding corrupt document", zap.String("key", key), zap.Error(err))
		return false
	}
	if env.Version != envelopeVersion || len(env.Data) == 0 {
		s.log.Warn("discarding document with unexpected version",
			zap.String("key", key), zap.Int("version", env.Version))
		return false
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		s.log.Warn("discarding corrupt document payload", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// readLegacy decodes a pre-versioning raw document.
func (s *Store) readLegacy(key string, out any) bool {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		s.log.Warn("discarding corrupt legacy document", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) writeEnvelope(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Warn("marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	payload, err := json.Marshal(envelope{Version: envelopeVersion, Data: data})
	if err != nil {
		s.log.Warn("marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.writeRaw(key, payload)
}

func (s *Store) writeRaw(key string, payload []byte) {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		s.log.Warn("mkdir failed", zap.String("root", s.Root), zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path(key), payload, 0o644); err != nil {
		s.log.Warn("write failed", zap.String("key", key), zap.Error(err))
	}
}

// LoadAppState returns the normalized state document, migrating the
// legacy unversioned key on first encounter. The second return value is
// false when neither key holds a usable document.
func (s *Store) LoadAppState() (AppState, bool) {
	var state AppState
	if s.readEnvelope(keyAppState, &state) {
		return normalizeAppState(state, s.now()), true
	}
	if s.readLegacy(keyAppStateLegacy, &state) {
		migrated := normalizeAppState(state, s.now())
		s.SaveAppState(migrated)
		s.log.Info("migrated legacy state document")
		return migrated, true
	}
	return defaultAppState(), false
}

func (s *Store) SaveAppState(state AppState) {
	s.writeEnvelope(keyAppState, state)
}

// LoadChatHistory returns the normalized conversation, migrating the
// legacy key on first encounter. Absent or corrupt history is an empty
// conversation.
func (s *Store) LoadChatHistory() []ChatMessage {
	var messages []ChatMessage
	if s.readEnvelope(keyChat, &messages) {
		return normalizeChatHistory(messages)
	}
	if s.readLegacy(keyChatLegacy, &messages) {
		migrated := normalizeChatHistory(messages)
		s.SaveChatHistory(migrated)
		s.log.Info("migrated legacy chat history")
		return migrated
	}
	return []ChatMessage{}
}

func (s *Store) SaveChatHistory(messages []ChatMessage) {
	s.writeEnvelope(keyChat, messages)
}

func (s *Store) LoadAPIKey() string {
	b, err := os.ReadFile(s.path(keyAPIKey))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (s *Store) SaveAPIKey(key string) {
	s.writeRaw(keyAPIKey, []byte(strings.TrimSpace(key)))
}

func (s *Store) SaveBackup(b Backup) {
	s.writeEnvelope(keyBackup, b)
}

func (s *Store) LoadBackup() (Backup, bool) {
	var b Backup
	if s.readEnvelope(keyBackup, &b) {
		return b, true
	}
	return Backup{}, false
}

func (s *Store) LoadQuickNotes() map[string][]string {
	notes := map[string][]string{}
	if s.readEnvelope(keyQuickNotes, &notes) {
		return notes
	}
	return map[string][]string{}
}

func (s *Store) SaveQuickNotes(notes map[string][]string) {
	s.writeEnvelope(keyQuickNotes, notes)
}

func (s *Store) SampleSeeded() bool {
	_, err := os.Stat(s.path(keySampleSeeded))
	return err == nil
}

func (s *Store) MarkSampleSeeded() {
	s.writeRaw(keySampleSeeded, []byte("true"))
}
