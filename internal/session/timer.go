package session

import "time"

// TimerHandle cancels a scheduled auto-advance. Cancelling after the timer
// has fired is a no-op.
type TimerHandle interface {
	Cancel()
}

// Scheduler schedules auto-advance callbacks. At most one scheduled advance
// is outstanding per question; the controller cancels it before any manual
// advance, question change, or session end.
type Scheduler interface {
	ScheduleAdvance(after time.Duration, onFire func()) TimerHandle
}

type timerScheduler struct{}

// NewScheduler returns the production Scheduler backed by time.AfterFunc.
func NewScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) ScheduleAdvance(after time.Duration, onFire func()) TimerHandle {
	return afterFuncHandle{timer: time.AfterFunc(after, onFire)}
}

type afterFuncHandle struct {
	timer *time.Timer
}

func (h afterFuncHandle) Cancel() {
	h.timer.Stop()
}
