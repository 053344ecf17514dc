package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// User-facing failure messages, keyed off the terminal status.
const (
	msgAuthFailed     = "Authentication failed. Check your API credential."
	msgRateLimited    = "Rate limit reached. Please wait and retry."
	msgUnavailable    = "Service temporarily unavailable. Try again later."
	msgUnknownFailure = "Unknown error."
)

var (
	ErrSendInFlight = errors.New("a send is already in flight")
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoCredential = errors.New("no API credential configured")
)

const maxHistoryLimit = 20

// Pipeline turns a user prompt into a persisted conversation turn. The
// user turn is appended optimistically before the round-trip and is
// never rolled back; the outcome (assistant content or a classified
// failure) always lands as exactly one more turn.
type Pipeline struct {
	ctrl   *Controller
	client *ChatClient
	log    *zap.Logger

	// mu guards the settings below: the UI loop edits them while a send
	// resolves on its own goroutine. SendMessage snapshots all three
	// once at entry, so mid-send edits apply to the next send.
	mu           sync.Mutex
	apiKey       string
	historyLimit int
	profile      PromptProfile

	sending atomic.Bool
}

func NewPipeline(ctrl *Controller, client *ChatClient, apiKey string, historyLimit int, profile PromptProfile, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		ctrl:         ctrl,
		client:       client,
		log:          log,
		apiKey:       apiKey,
		historyLimit: historyLimit,
		profile:      profile,
	}
}

func (p *Pipeline) Sending() bool { return p.sending.Load() }

func (p *Pipeline) APIKey() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.apiKey
}

func (p *Pipeline) SetProfile(profile PromptProfile) {
	p.mu.Lock()
	p.profile = profile
	p.mu.Unlock()
}

func (p *Pipeline) SetHistoryLimit(limit int) {
	p.mu.Lock()
	p.historyLimit = limit
	p.mu.Unlock()
}

func (p *Pipeline) SetAPIKey(key string) {
	p.mu.Lock()
	p.apiKey = key
	p.mu.Unlock()
}

func clampHistoryLimit(limit int) int {
	if limit < 0 {
		return 0
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}

// historyWindow projects the prior conversation into request turns:
// error turns are dropped, only user/assistant roles are kept, and the
// window is the last limit turns (clamped).
func (p *Pipeline) historyWindow(limit int) []chatTurn {
	messages := p.ctrl.Messages()
	kept := make([]chatTurn, 0, len(messages))
	for _, message := range messages {
		if message.IsError {
			continue
		}
		if message.Role != RoleUser && message.Role != RoleAssistant {
			continue
		}
		kept = append(kept, chatTurn{Role: string(message.Role), Content: message.Content})
	}
	limit = clampHistoryLimit(limit)
	if len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	return kept
}

// SendMessage runs the delivery algorithm. Rejections (in-flight send,
// blank content, missing credential) happen before any side effect.
func (p *Pipeline) SendMessage(ctx context.Context, content, stepTitle string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyMessage
	}

	p.mu.Lock()
	key := p.apiKey
	limit := p.historyLimit
	profile := p.profile
	p.mu.Unlock()

	if strings.TrimSpace(key) == "" {
		return ErrNoCredential
	}
	if !p.sending.CompareAndSwap(false, true) {
		return ErrSendInFlight
	}
	defer p.sending.Store(false)

	turns := make([]chatTurn, 0, limit+2)
	turns = append(turns, chatTurn{Role: string(RoleSystem), Content: buildSystemPrompt(stepTitle, profile)})
	turns = append(turns, p.historyWindow(limit)...)
	turns = append(turns, chatTurn{Role: string(RoleUser), Content: content})

	p.ctrl.AppendMessage(RoleUser, content, false)

	reply, err := p.client.Complete(ctx, key, turns)
	if err != nil {
		message := ClassifyFailure(err)
		p.ctrl.AppendMessage(RoleAssistant, message, true)
		p.log.Warn("chat delivery failed", zap.Error(err))
		return err
	}

	p.ctrl.AppendMessage(RoleAssistant, reply, false)
	p.ctrl.IncrementQuestions()
	return nil
}

// ClassifyFailure maps a delivery error onto the fixed user-facing
// messages; unknown statuses surface their raw status text.
func ClassifyFailure(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return msgAuthFailed
		case http.StatusTooManyRequests:
			return msgRateLimited
		case http.StatusServiceUnavailable:
			return msgUnavailable
		default:
			return statusErr.Error()
		}
	}
	if err == nil {
		return msgUnknownFailure
	}
	return err.Error()
}
