package service

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the congestion and visit tracking services.
// Callers branch with errors.Is; store/cause details are carried in the
// wrapping message.
var (
	ErrVenueNotFound    = errors.New("venue not found")
	ErrInvalidPartySize = errors.New("party size must be at least 1")
	ErrPastIntendedTime = errors.New("intended time must be after the current time")
	ErrStoreUnavailable = errors.New("store unavailable")
)

func unavailable(cause error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, cause)
}
