package services

import "time"

// Clock returns the current instant. Services read time only through it.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}
