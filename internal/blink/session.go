package blink

import "time"

// Session holds all mutable state for one monitoring session. It is not safe
// for concurrent use; the monitor pipeline drives it from a single goroutine
// and all time-dependent methods take an explicit now so they can be tested
// without a real clock.
type Session struct {
	phase Phase

	eye          EyeState
	reference    float64
	hasReference bool

	count       int
	windowStart time.Time
	minuteIndex int

	reminderActive bool
	reminderStart  time.Time

	startTime time.Time
}

// NewSession returns an idle session. Start must be called before samples
// are observed.
func NewSession() *Session {
	return &Session{}
}

// Start begins a new session at now, re-initializing the counter, the
// reference baseline, the eye state, and the session clock. Restarting never
// carries state over from a previous run.
func (s *Session) Start(now time.Time) {
	s.phase = PhaseRunning
	s.eye = EyeOpen
	s.reference = 0
	s.hasReference = false
	s.count = 0
	s.windowStart = now
	s.minuteIndex = 0
	s.reminderActive = false
	s.reminderStart = time.Time{}
	s.startTime = now
}

// Stop ends a running session. Stopping an idle or finished session is a
// no-op.
func (s *Session) Stop() {
	if s.phase == PhaseRunning {
		s.phase = PhaseStopped
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Running reports whether the session is actively counting.
func (s *Session) Running() bool {
	return s.phase == PhaseRunning
}

// Reference returns the current baseline and whether one has been observed.
func (s *Session) Reference() (float64, bool) {
	return s.reference, s.hasReference
}

// Observe feeds one eye-openness sample into the session and returns true
// when the sample registered a new blink.
//
// The baseline is the running maximum openness seen this session: absolute
// eyelid distance depends on face size and camera distance, so the largest
// value seen so far stands in for "fully open". The baseline never decreases
// within a session.
//
// A blink is counted only on the open-to-closed transition. Consecutive
// below-threshold samples while already closed do not count again, so one
// physical blink yields exactly one count no matter how many frames it spans.
// A single below-threshold sample is enough; there is no minimum closed
// duration.
func (s *Session) Observe(openness float64, now time.Time) bool {
	if s.phase != PhaseRunning {
		return false
	}

	if !s.hasReference || openness > s.reference {
		s.reference = openness
		s.hasReference = true
	}

	threshold := s.reference * BlinkRatio
	if openness < threshold {
		if s.eye == EyeOpen {
			s.eye = EyeClosed
			s.count++
			return true
		}
		return false
	}

	s.eye = EyeOpen
	return false
}

// Tick advances the time-driven parts of the session: reminder expiry, the
// minute window, and the session clock. It returns a summary when a minute
// window closed on this call, or nil otherwise.
//
// The reminder clears once it has been visible longer than ReminderDuration,
// independent of minute boundaries. When a window closes under NormalMax the
// reminder is activated with a fresh start time; the counter is reset
// unconditionally. The session completes once elapsed time reaches
// SessionDuration.
func (s *Session) Tick(now time.Time) *MinuteSummary {
	if s.phase != PhaseRunning {
		return nil
	}

	if s.reminderActive && now.Sub(s.reminderStart) > ReminderDuration {
		s.reminderActive = false
	}

	var summary *MinuteSummary
	if now.Sub(s.windowStart) >= MinuteWindow {
		summary = &MinuteSummary{
			Index:       s.minuteIndex,
			Blinks:      s.count,
			UnderTarget: s.count < NormalMax,
			ClosedAt:    now,
		}
		if summary.UnderTarget {
			s.reminderActive = true
			s.reminderStart = now
		}
		s.count = 0
		s.windowStart = now
		s.minuteIndex++
	}

	if now.Sub(s.startTime) >= SessionDuration {
		s.phase = PhaseCompleted
	}

	return summary
}

// ReminderVisible reports whether the reminder should be shown at now. It
// answers without mutating state so the renderer can query it between ticks.
func (s *Session) ReminderVisible(now time.Time) bool {
	return s.reminderActive && now.Sub(s.reminderStart) <= ReminderDuration
}

// Snapshot returns the session state as seen at now.
func (s *Session) Snapshot(now time.Time) Snapshot {
	remaining := SessionDuration
	if s.phase == PhaseRunning {
		remaining = SessionDuration - now.Sub(s.startTime)
	} else if s.phase == PhaseCompleted || s.phase == PhaseStopped {
		remaining = 0
	}
	if remaining < 0 {
		remaining = 0
	}

	return Snapshot{
		Phase:            s.phase.String(),
		Blinks:           s.count,
		Target:           NormalMax,
		Minute:           s.minuteIndex,
		RemainingSeconds: int(remaining.Seconds()),
		ReminderActive:   s.ReminderVisible(now),
		EyesClosed:       s.eye == EyeClosed,
		Reference:        s.reference,
	}
}
