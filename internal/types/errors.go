package types

import (
	"errors"
	"fmt"
)

// ErrNoDestination is returned when neither the request nor the free
// text yields a resolvable destination.
var ErrNoDestination = errors.New("no destination could be resolved from the request")

// InsufficientSupplyError is returned when the pre-assembly probe finds
// zero usable places for the whole trip, before any region expansion.
// Partial supply never produces this error; it only guards against
// silently returning an empty itinerary.
type InsufficientSupplyError struct {
	Region   string
	Found    int
	Required int
}

func (e *InsufficientSupplyError) Error() string {
	return fmt.Sprintf("insufficient place supply for region %q: found %d of %d required after filtering", e.Region, e.Found, e.Required)
}
