package events

import "errors"

var (
	// ErrEventNotFound is returned when an event does not exist or has been deactivated.
	ErrEventNotFound = errors.New("event not found")

	// ErrCapacityExceeded is returned by Reserve/Adjust when honoring the request
	// would push booked_seats past max_capacity. No mutation happens in that case.
	ErrCapacityExceeded = errors.New("not enough seats available")

	// ErrEventNotBookable is returned when the event exists but is not open for booking.
	ErrEventNotBookable = errors.New("event is not available for booking")

	// ErrValidation wraps request-level validation failures.
	ErrValidation = errors.New("validation failed")
)
