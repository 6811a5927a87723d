// Copyright 2024 Northern.tech AS
//
//    All Rights Reserved

package utils

import "time"

// Clock interface
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// RealClock provides a real clock
type RealClock struct{}

// Now returns the current date and time
func (RealClock) Now() time.Time {
	return time.Now()
}

// Sleep pauses the calling goroutine for at least the duration d
func (RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
