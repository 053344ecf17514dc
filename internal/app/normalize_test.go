package app

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

func TestNormalizeAppState_DropsStepsWithoutID(t *testing.T) {
	state := AppState{
		Steps: []LearningStep{
			{ID: "", Title: "ghost"},
			{ID: "s1", Title: "real"},
		},
	}
	got := normalizeAppState(state, testNow)
	if len(got.Steps) != 1 || got.Steps[0].ID != "s1" {
		t.Fatalf("steps = %+v, want only s1", got.Steps)
	}
}

func TestNormalizeAppState_RepairsFields(t *testing.T) {
	state := AppState{
		Steps: []LearningStep{
			{
				ID:                 "s1",
				TimeSpentInSeconds: -30,
				Tags:               []string{"math", "", "math", "exam"},
				Sessions: []TimerSession{
					{ID: "", StepID: "s1", DurationSeconds: 10},
					{ID: "x", StepID: "", DurationSeconds: 10},
					{ID: "ok", StepID: "s1", DurationSeconds: -2},
				},
			},
		},
		QuestionsAsked:   -1,
		TotalTimeSeconds: -5,
	}
	got := normalizeAppState(state, testNow)
	step := got.Steps[0]
	if step.Title != "Untitled" {
		t.Fatalf("Title = %q, want Untitled", step.Title)
	}
	if step.TimeSpentInSeconds != 0 {
		t.Fatalf("TimeSpentInSeconds = %d, want 0", step.TimeSpentInSeconds)
	}
	if step.CreatedAt != testNow.Format(time.RFC3339) {
		t.Fatalf("CreatedAt = %q, want now", step.CreatedAt)
	}
	wantTags := []string{"math", "exam"}
	if len(step.Tags) != len(wantTags) {
		t.Fatalf("Tags = %v, want %v", step.Tags, wantTags)
	}
	for i, tag := range wantTags {
		if step.Tags[i] != tag {
			t.Fatalf("Tags = %v, want %v", step.Tags, wantTags)
		}
	}
	if len(step.Sessions) != 1 || step.Sessions[0].ID != "ok" {
		t.Fatalf("Sessions = %+v, want only 'ok'", step.Sessions)
	}
	if step.Sessions[0].DurationSeconds != 0 {
		t.Fatalf("DurationSeconds = %d, want clamped 0", step.Sessions[0].DurationSeconds)
	}
	if got.QuestionsAsked != 0 || got.TotalTimeSeconds != 0 {
		t.Fatalf("counters = %d/%d, want 0/0", got.QuestionsAsked, got.TotalTimeSeconds)
	}
}

func TestNormalizeAppState_ClearsEmptyCurrentStepID(t *testing.T) {
	empty := ""
	got := normalizeAppState(AppState{CurrentStepID: &empty}, testNow)
	if got.CurrentStepID != nil {
		t.Fatal("empty CurrentStepID not cleared")
	}
}

func TestNormalizeChatHistory_DropsMessagesWithoutID(t *testing.T) {
	messages := []ChatMessage{
		{ID: "", Role: RoleUser, Content: "lost"},
		{ID: "m1", Role: RoleAssistant, Content: "kept"},
	}
	got := normalizeChatHistory(messages)
	if len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("messages = %+v, want only m1", got)
	}
}

func TestCurrentStep_DanglingReferenceIsNil(t *testing.T) {
	gone := "gone"
	state := AppState{
		Steps:         []LearningStep{{ID: "s1"}},
		CurrentStepID: &gone,
	}
	if state.CurrentStep() != nil {
		t.Fatal("dangling CurrentStepID must resolve to nil")
	}
}
