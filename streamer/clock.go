package streamer

import "time"

// Clock abstracts the time operations FileSource paces with, so tests can
// replay a file without sleeping.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After delivers the current time once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// SystemClock implements Clock using the system clock.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// After wraps time.After.
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
