package service

import "time"

// Clock abstracts the current time so pipeline stages stay deterministic in
// tests and carry no hidden time-of-day dependencies.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// NewSystemClock creates the production Clock.
func NewSystemClock() Clock {
	return SystemClock{}
}
