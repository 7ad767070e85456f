package engine

import "time"

// TimeManager tracks the wall-clock budget of a single search call.
type TimeManager struct {
	startTime time.Time
	deadline  time.Time
}

// NewTimeManager starts the clock for a search with the given limits.
// Infinite and depth-only searches run without a deadline.
func NewTimeManager(limits Limits) *TimeManager {
	tm := &TimeManager{startTime: time.Now()}
	if !limits.Infinite && limits.MoveTime > 0 {
		tm.deadline = tm.startTime.Add(limits.MoveTime)
	}
	return tm
}

// Elapsed returns the time elapsed since the search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Deadline returns the zero time when the search has no time limit.
func (tm *TimeManager) Deadline() time.Time {
	return tm.deadline
}

// ShouldStop returns true if the deadline has passed.
func (tm *TimeManager) ShouldStop() bool {
	return !tm.deadline.IsZero() && time.Now().After(tm.deadline)
}
