package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Controller owns the application state document and the conversation.
// Every mutation goes through a command method and is written to the
// store before the method returns, so on-disk state always reflects the
// last committed mutation. The mutex is the Go rendering of the
// single-writer discipline: timer ticks arrive on the UI loop while a
// chat send resolves on its own goroutine.
type Controller struct {
	mu    sync.Mutex
	store *Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	state      AppState
	messages   []ChatMessage
	quickNotes map[string][]string
}

func NewController(store *Store, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	state, _ := store.LoadAppState()
	return &Controller{
		store:      store,
		log:        log,
		now:        time.Now,
		newID:      uuid.NewString,
		state:      state,
		messages:   store.LoadChatHistory(),
		quickNotes: store.LoadQuickNotes(),
	}
}

// State returns a deep copy of the state document. Callers never hold a
// reference into the live aggregate.
func (c *Controller) State() AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneState(c.state)
}

func (c *Controller) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Controller) QuickNotes(stepID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	notes := c.quickNotes[stepID]
	out := make([]string, len(notes))
	copy(out, notes)
	return out
}

func cloneState(state AppState) AppState {
	out := state
	out.Steps = make([]LearningStep, len(state.Steps))
	for i, step := range state.Steps {
		step.Tags = append([]string(nil), step.Tags...)
		step.Sessions = append([]TimerSession(nil), step.Sessions...)
		out.Steps[i] = step
	}
	if state.CurrentStepID != nil {
		id := *state.CurrentStepID
		out.CurrentStepID = &id
	}
	return out
}

func (c *Controller) persistState() {
	c.store.SaveAppState(c.state)
}

func (c *Controller) persistMessages() {
	c.store.SaveChatHistory(c.messages)
}

// AddStep prepends a new step and focuses it when nothing is focused.
func (c *Controller) AddStep(title string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := LearningStep{
		ID:        c.newID(),
		Title:     title,
		Notes:     "",
		CreatedAt: c.now().Format(time.RFC3339),
		Tags:      []string{},
		Sessions:  []TimerSession{},
	}
	c.state.Steps = append([]LearningStep{step}, c.state.Steps...)
	if c.state.CurrentStepID == nil {
		c.state.CurrentStepID = &step.ID
	}
	c.persistState()
	return step.ID
}

func (c *Controller) SetCurrentStep(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		c.state.CurrentStepID = nil
	} else {
		c.state.CurrentStepID = &id
	}
	c.persistState()
}

// RemoveStep drops the step and clears the focus pointer when it was
// focused. The caller finalizes any running session first.
func (c *Controller) RemoveStep(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	steps := make([]LearningStep, 0, len(c.state.Steps))
	for _, step := range c.state.Steps {
		if step.ID != id {
			steps = append(steps, step)
		}
	}
	c.state.Steps = steps
	if c.state.CurrentStepID != nil && *c.state.CurrentStepID == id {
		c.state.CurrentStepID = nil
	}
	delete(c.quickNotes, id)
	c.persistState()
	c.store.SaveQuickNotes(c.quickNotes)
}

func (c *Controller) UpdateNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.state.CurrentStep()
	if step == nil {
		return
	}
	step.Notes = notes
	c.persistState()
}

func (c *Controller) UpdateTags(tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.state.CurrentStep()
	if step == nil {
		return
	}
	step.Tags = normalizeTags(tags)
	c.persistState()
}

// AddSecond is the per-tick command: one second onto the lifetime total.
func (c *Controller) AddSecond() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.TotalTimeSeconds++
	c.persistState()
}

// CommitSession applies a finalized timer interval: the duration is added
// to the step's aggregate and an immutable session record is appended.
// Zero-duration commits and commits against a deleted step are no-ops.
func (c *Controller) CommitSession(commit SessionCommit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if commit.DurationSeconds <= 0 {
		return
	}
	step := c.state.findStep(commit.StepID)
	if step == nil {
		return
	}
	step.TimeSpentInSeconds += commit.DurationSeconds
	step.Sessions = append(step.Sessions, TimerSession{
		ID:              c.newID(),
		StepID:          commit.StepID,
		StartAt:         commit.StartAt.Format(time.RFC3339),
		EndAt:           commit.EndAt.Format(time.RFC3339),
		DurationSeconds: commit.DurationSeconds,
	})
	c.persistState()
}

func (c *Controller) IncrementQuestions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.QuestionsAsked++
	c.persistState()
}

func (c *Controller) AppendMessage(role ChatRole, content string, isError bool) ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	message := ChatMessage{
		ID:        c.newID(),
		Role:      role,
		Content:   content,
		CreatedAt: c.now().Format(time.RFC3339),
		IsError:   isError,
	}
	c.messages = append(c.messages, message)
	c.persistMessages()
	return message
}

func (c *Controller) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = []ChatMessage{}
	c.persistMessages()
}

func (c *Controller) AddQuickNote(stepID, note string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if stepID == "" || note == "" {
		return
	}
	c.quickNotes[stepID] = append(c.quickNotes[stepID], note)
	c.store.SaveQuickNotes(c.quickNotes)
}

func (c *Controller) RemoveQuickNote(stepID string, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	notes := c.quickNotes[stepID]
	if index < 0 || index >= len(notes) {
		return
	}
	c.quickNotes[stepID] = append(notes[:index:index], notes[index+1:]...)
	c.store.SaveQuickNotes(c.quickNotes)
}

// ReplaceFromImport swaps in an imported state and conversation
// wholesale. Both are normalized before they land.
func (c *Controller) ReplaceFromImport(state *AppState, messages []ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state != nil {
		c.state = normalizeAppState(*state, c.now())
		c.persistState()
	}
	if messages != nil {
		c.messages = normalizeChatHistory(messages)
		c.persistMessages()
	}
}
