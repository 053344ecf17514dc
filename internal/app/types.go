package app

// LearningStep is one unit of study. Time is committed against it by the
// timer engine; sessions is append-only.
type LearningStep struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Notes              string         `json:"notes"`
	TimeSpentInSeconds int            `json:"timeSpentInSeconds"`
	CreatedAt          string         `json:"createdAt"`
	Tags               []string       `json:"tags"`
	Sessions           []TimerSession `json:"sessions"`
}

// TimerSession is an immutable record of one contiguous timed interval.
// DurationSeconds is always > 0; zero-duration sessions are never recorded.
type TimerSession struct {
	ID              string `json:"id"`
	StepID          string `json:"stepId"`
	StartAt         string `json:"startAt"`
	EndAt           string `json:"endAt"`
	DurationSeconds int    `json:"durationSeconds"`
}

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

// ChatMessage is one conversation turn. IsError marks a turn that records a
// delivery failure rather than a model response.
type ChatMessage struct {
	ID        string   `json:"id"`
	Role      ChatRole `json:"role"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"createdAt"`
	IsError   bool     `json:"isError,omitempty"`
}

// AppState is the single application state document. TotalTimeSeconds is a
// lifetime counter: deleting a step removes its TimeSpentInSeconds but never
// decrements the total.
type AppState struct {
	Steps            []LearningStep `json:"steps"`
	CurrentStepID    *string        `json:"currentStepId"`
	QuestionsAsked   int            `json:"questionsAsked"`
	TotalTimeSeconds int            `json:"totalTimeSeconds"`
}

func defaultAppState() AppState {
	return AppState{
		Steps:            []LearningStep{},
		CurrentStepID:    nil,
		QuestionsAsked:   0,
		TotalTimeSeconds: 0,
	}
}

// CurrentStep resolves the focused step, treating a dangling pointer as
// nil. Value receiver so lookups chain off State() snapshots; the
// returned pointer aims into the receiver's Steps backing array.
func (s AppState) CurrentStep() *LearningStep {
	if s.CurrentStepID == nil {
		return nil
	}
	for i := range s.Steps {
		if s.Steps[i].ID == *s.CurrentStepID {
			return &s.Steps[i]
		}
	}
	return nil
}

func (s AppState) findStep(id string) *LearningStep {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			return &s.Steps[i]
		}
	}
	return nil
}
