package app

import (
	"time"

	"github.com/google/uuid"
)

// sampleState seeds a first run with one worked example so the board is
// not empty. Totals are consistent with the seeded sessions.
func sampleState(now time.Time) AppState {
	stepID := uuid.NewString()
	start1 := now.Add(-2 * time.Hour)
	end1 := start1.Add(45 * time.Minute)
	start2 := now.Add(-40 * time.Minute)
	end2 := start2.Add(25 * time.Minute)
	sessions := []TimerSession{
		{
			ID:              uuid.NewString(),
			StepID:          stepID,
			StartAt:         start1.Format(time.RFC3339),
			EndAt:           end1.Format(time.RFC3339),
			DurationSeconds: 2700,
		},
		{
			ID:              uuid.NewString(),
			StepID:          stepID,
			StartAt:         start2.Format(time.RFC3339),
			EndAt:           end2.Format(time.RFC3339),
			DurationSeconds: 1500,
		},
	}
	total := 0
	for _, session := range sessions {
		total += session.DurationSeconds
	}
	return AppState{
		Steps: []LearningStep{
			{
				ID:                 stepID,
				Title:              "Math: quadratic equations",
				Notes:              "Practiced the quadratic formula and worked through examples.\nWatch the signs when substituting.",
				TimeSpentInSeconds: total,
				CreatedAt:          now.Format(time.RFC3339),
				Tags:               []string{"math", "exam", "basics"},
				Sessions:           sessions,
			},
		},
		CurrentStepID:    &stepID,
		QuestionsAsked:   0,
		TotalTimeSeconds: total,
	}
}
