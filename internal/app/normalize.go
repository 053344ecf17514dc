package app

import "time"

// Normalization runs on every load and on import, not only during
// migration, so hand-edited or partially damaged documents are repaired
// instead of crashing the app. All functions here are pure.

func normalizeSessions(sessions []TimerSession) []TimerSession {
	out := make([]TimerSession, 0, len(sessions))
	for _, session := range sessions {
		if session.ID == "" || session.StepID == "" {
			continue
		}
		if session.DurationSeconds < 0 {
			session.DurationSeconds = 0
		}
		out = append(out, session)
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func normalizeStep(step LearningStep, now time.Time) LearningStep {
	if step.Title == "" {
		step.Title = "Untitled"
	}
	if step.TimeSpentInSeconds < 0 {
		step.TimeSpentInSeconds = 0
	}
	if step.CreatedAt == "" {
		step.CreatedAt = now.Format(time.RFC3339)
	}
	step.Tags = normalizeTags(step.Tags)
	step.Sessions = normalizeSessions(step.Sessions)
	return step
}

// normalizeAppState repairs a decoded state document: steps without an id
// are dropped, numeric fields are clamped to >= 0, and nil collections
// become empty ones.
func normalizeAppState(state AppState, now time.Time) AppState {
	steps := make([]LearningStep, 0, len(state.Steps))
	for _, step := range state.Steps {
		if step.ID == "" {
			continue
		}
		steps = append(steps, normalizeStep(step, now))
	}
	state.Steps = steps
	if state.QuestionsAsked < 0 {
		state.QuestionsAsked = 0
	}
	if state.TotalTimeSeconds < 0 {
		state.TotalTimeSeconds = 0
	}
	if state.CurrentStepID != nil && *state.CurrentStepID == "" {
		state.CurrentStepID = nil
	}
	return state
}

// normalizeChatHistory drops messages without an id.
func normalizeChatHistory(messages []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, message := range messages {
		if message.ID == "" {
			continue
		}
		out = append(out, message)
	}
	return out
}
