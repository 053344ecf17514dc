package app

import "time"

// Engine is the timekeeping state machine. Two orthogonal pieces of
// state: whether the timer is running, and the active session marker
// recording which step the elapsed counter will be attributed to.
//
// The duration of a finalized session comes from the elapsed counter,
// never from wall-clock deltas, so a system clock jump cannot corrupt
// the accounting.
type Engine struct {
	now func() time.Time

	running bool
	elapsed int
	active  *sessionMarker
}

type sessionMarker struct {
	stepID  string
	startAt time.Time
}

// SessionCommit is the outcome of finalizing an active session.
type SessionCommit struct {
	StepID          string
	StartAt         time.Time
	EndAt           time.Time
	DurationSeconds int
}

func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

func (e *Engine) Running() bool { return e.running }
func (e *Engine) Elapsed() int  { return e.elapsed }

// Start begins (or resumes) ticking against stepID. Starting while
// already running is idempotent; the marker is only created when no
// session is active, so pause/resume stays within one session.
func (e *Engine) Start(stepID string) {
	if stepID == "" {
		return
	}
	if e.active == nil {
		e.active = &sessionMarker{stepID: stepID, startAt: e.now()}
	}
	e.running = true
}

// Tick advances the elapsed counter by one second. Returns false when
// the timer is not running, in which case nothing changed.
func (e *Engine) Tick() bool {
	if !e.running {
		return false
	}
	e.elapsed++
	return true
}

// Pause stops ticking without touching the elapsed counter or the
// session marker.
func (e *Engine) Pause() {
	e.running = false
}

// Reset stops ticking and zeroes the elapsed counter. It does not
// finalize: a caller that wants the time committed calls Finalize first.
func (e *Engine) Reset() {
	e.running = false
	e.elapsed = 0
}

// SetPreset overwrites the elapsed counter, clamped to >= 0. Timer state
// and the session marker are untouched.
func (e *Engine) SetPreset(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	e.elapsed = seconds
}

// Finalize converts the active session marker into a commit and clears
// it. With no active marker it is a no-op, so calling it twice cannot
// produce a duplicate session. The caller decides whether the commit is
// worth recording (DurationSeconds > 0).
func (e *Engine) Finalize() (SessionCommit, bool) {
	if e.active == nil {
		return SessionCommit{}, false
	}
	commit := SessionCommit{
		StepID:          e.active.stepID,
		StartAt:         e.active.startAt,
		EndAt:           e.now(),
		DurationSeconds: e.elapsed,
	}
	e.active = nil
	return commit, true
}
