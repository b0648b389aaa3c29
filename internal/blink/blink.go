// Package blink implements the blink-rate session state machine: an adaptive
// eye-openness baseline, an open/closed debouncer that counts discrete blink
// events, a per-minute quota monitor with a timed reminder, and the session
// clock. The package has no camera or UI dependencies; callers feed it
// openness samples and wall-clock times.
package blink

import "time"

// Detection and session constants. Changing BlinkRatio or NormalMax changes
// the blink-count semantics, so they are fixed rather than configurable.
const (
	// BlinkRatio is the fraction of the reference baseline below which the
	// eye is considered closed.
	BlinkRatio = 0.4

	// NormalMax is the per-minute blink count below which a reminder fires.
	NormalMax = 20

	// MinuteWindow is the length of one counting window.
	MinuteWindow = time.Minute

	// ReminderDuration is how long an activated reminder stays visible.
	ReminderDuration = 10 * time.Second

	// SessionDuration is the total length of a monitoring session.
	SessionDuration = 5 * time.Minute
)

// EyeState is the debounced open/closed state of the tracked eye.
type EyeState int

const (
	// EyeOpen is the initial state; openness is at or above the threshold.
	EyeOpen EyeState = iota
	// EyeClosed means openness dropped below reference * BlinkRatio.
	EyeClosed
)

// String returns the lowercase name of the eye state.
func (s EyeState) String() string {
	if s == EyeClosed {
		return "closed"
	}
	return "open"
}

// Phase is the lifecycle phase of a monitoring session.
type Phase int

const (
	// PhaseIdle means no session has been started.
	PhaseIdle Phase = iota
	// PhaseRunning means a session is actively counting blinks.
	PhaseRunning
	// PhaseCompleted means the session reached SessionDuration. Terminal.
	PhaseCompleted
	// PhaseStopped means the session was stopped explicitly. Terminal.
	PhaseStopped
)

// String returns the lowercase name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// MinuteSummary describes one completed counting window.
type MinuteSummary struct {
	// Index is the zero-based index of the completed minute.
	Index int `json:"index"`
	// Blinks is the number of blinks counted in the window.
	Blinks int `json:"blinks"`
	// UnderTarget reports whether Blinks fell below NormalMax.
	UnderTarget bool `json:"under_target"`
	// ClosedAt is when the window was evaluated and reset.
	ClosedAt time.Time `json:"closed_at"`
}

// Snapshot is a point-in-time view of the session, safe to serialize for the
// UI. It is derived, never mutated in place.
type Snapshot struct {
	Phase            string  `json:"phase"`
	Blinks           int     `json:"blinks"`
	Target           int     `json:"target"`
	Minute           int     `json:"minute"`
	RemainingSeconds int     `json:"remaining_seconds"`
	ReminderActive   bool    `json:"reminder_active"`
	EyesClosed       bool    `json:"eyes_closed"`
	Reference        float64 `json:"reference"`
}
