package service

import "time"

// Clock supplies the current time. Injected so validation and windowing
// stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
