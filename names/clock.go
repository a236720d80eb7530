package names

import "time"

// Clock supplies the current time to tag expansion (@DATE@, @TIME@,
// @DATETIME@). Injected rather than calling time.Now() directly so tests
// can freeze time, mirroring original_source/tests/test_utils.py which
// freezes the clock for exact-date assertions.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now().
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a Clock that always returns the same instant; useful in
// tests and for any caller that wants a stable timestamp across a batch
// of name formatting calls.
type FixedClock struct{ At time.Time }

func (c FixedClock) Now() time.Time { return c.At }
