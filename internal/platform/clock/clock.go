package clock

import "time"

// Clock supplies the current time. Booking-window and state-machine checks
// read the clock at write time, so tests can pin it to exercise boundaries.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }
