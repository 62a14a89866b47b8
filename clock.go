package idtoken

import "time"

// Clock supplies the instant claims are evaluated at. A Client reads its
// clock exactly once per verification and passes that instant through the
// whole pipeline, so a single verification never straddles two different
// notions of now. Inject one with WithClock to pin time in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
