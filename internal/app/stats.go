package app

// Aggregates consumed by the dashboard and stats views.

// TotalMinutes rounds the lifetime total down to whole minutes.
func TotalMinutes(state AppState) int {
	return state.TotalTimeSeconds / 60
}

// TagTimeRollup sums committed seconds per tag across surviving steps.
// A step's time counts once for each of its tags.
func TagTimeRollup(state AppState) map[string]int {
	rollup := map[string]int{}
	for _, step := range state.Steps {
		for _, tag := range step.Tags {
			rollup[tag] += step.TimeSpentInSeconds
		}
	}
	return rollup
}

// SessionCount counts committed sessions across all steps.
func SessionCount(state AppState) int {
	n := 0
	for _, step := range state.Steps {
		n += len(step.Sessions)
	}
	return n
}
