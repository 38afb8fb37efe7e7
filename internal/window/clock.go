package window

import "time"

// Clock supplies the current wall-clock time. The Manager never calls
// time.Now directly so tests can pin the instant a decision is made
// against.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock {
	return systemClock{}
}
