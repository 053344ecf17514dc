package app

// PromptProfile selects the response style of the study assistant.
type PromptProfile string

const (
	ProfileConcise  PromptProfile = "concise"
	ProfileDetailed PromptProfile = "detail"
	ProfileQuiz     PromptProfile = "quiz"
)

// ParseProfile maps a stored string onto a profile, defaulting to concise.
func ParseProfile(s string) PromptProfile {
	switch PromptProfile(s) {
	case ProfileDetailed:
		return ProfileDetailed
	case ProfileQuiz:
		return ProfileQuiz
	default:
		return ProfileConcise
	}
}

// buildSystemPrompt composes the system instruction from the active step
// title and the selected profile.
func buildSystemPrompt(stepTitle string, profile PromptProfile) string {
	if stepTitle == "" {
		stepTitle = "General study"
	}
	base := "You are a helpful study assistant. Current learning step: " + stepTitle + "."
	switch profile {
	case ProfileDetailed:
		return base + " Answer thoroughly, with structure and examples."
	case ProfileQuiz:
		return base + " Answer as a quiz coach with follow-up questions and short exercises."
	default:
		return base + " Answer concisely and clearly."
	}
}
