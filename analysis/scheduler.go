package analysis

import "time"

// Scheduler delays the next poll attempt. The channel fires once the delay has passed.
type Scheduler interface {
	After(d time.Duration) <-chan time.Time
}

// TimerScheduler schedules on the wall clock
type TimerScheduler struct{}

// After implements Scheduler
func (TimerScheduler) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
