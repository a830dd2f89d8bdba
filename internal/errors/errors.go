package errors

import (
	"errors"
	"fmt"
)

// Domain failures returned by the stores and services. Handlers map these to
// HTTP statuses; anything outside this set is treated as an internal error.
var (
	ErrEventNotFound   = errors.New("the requested event does not exist")
	ErrBookingNotFound = errors.New("no booking found with the provided ID")

	ErrForbidden = errors.New("operation is forbidden for user")

	ErrInvalidQuantity = errors.New("number of tickets must be a positive integer")
	ErrInvalidStatus   = errors.New("invalid event status")

	ErrEventNotBookable = errors.New("this event is not available for booking at the moment")

	ErrCapacityReductionDenied = errors.New("cannot reduce total tickets as there might be existing bookings")
	ErrAlreadyCanceled         = errors.New("booking has already been canceled")
)

// InsufficientInventoryError is returned when a reservation asks for more
// tickets than the event has left. It carries the remaining count so the
// message can surface it to the caller.
type InsufficientInventoryError struct {
	Remaining int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("sorry, only %d tickets are available for this event", e.Remaining)
}

// IsDomain reports whether err belongs to the domain taxonomy above.
func IsDomain(err error) bool {
	var inv *InsufficientInventoryError
	if errors.As(err, &inv) {
		return true
	}
	for _, target := range []error{
		ErrEventNotFound,
		ErrBookingNotFound,
		ErrForbidden,
		ErrInvalidQuantity,
		ErrInvalidStatus,
		ErrEventNotBookable,
		ErrCapacityReductionDenied,
		ErrAlreadyCanceled,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
