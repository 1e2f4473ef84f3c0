package service

import (
	"errors"
	"fmt"
	"time"
)

// Common service errors
var (
	ErrVerificationFailed = errors.New("verification failed")
	ErrStoreUnavailable   = errors.New("store unavailable")
)

// CooldownActiveError is returned when a find request arrives while the
// participant's cooldown window is still running. Not a failure: the
// controller turns it into a cooldown frame rather than an error frame.
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active: %s remaining", e.Remaining)
}

// Seconds remaining, rounded up so the client never retries too early.
func (e *CooldownActiveError) Seconds() int {
	secs := int(e.Remaining / time.Second)
	if e.Remaining%time.Second > 0 {
		secs++
	}
	return secs
}
