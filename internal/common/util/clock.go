package util

import "time"

// Clock supplies the current time to code that would otherwise call
// time.Now directly, so load stamps and token expiry can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports Time.
type FixedClock struct {
	Time time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Time
}
