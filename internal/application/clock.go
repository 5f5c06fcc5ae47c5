package application

import "time"

// Clock supaya waktu bisa dikontrol di test
type Clock interface {
	Now() time.Time
}

// SystemClock pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
