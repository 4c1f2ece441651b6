package airport

import "errors"

var (
	// ErrUnknownAircraft is returned when a takeoff is requested for an aircraft that is not parked here.
	ErrUnknownAircraft = errors.New("aircraft is not parked at this airport")

	// ErrTokenExpired is returned when a token is performed after its validity window.
	// The reserved resources have been released by the time it is returned.
	ErrTokenExpired = errors.New("token was expired")

	// ErrInvalidToken is returned for Hold tokens and for tokens whose reservation was already consumed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnknownRunway is returned when a token names a runway this airport does not have.
	ErrUnknownRunway = errors.New("unknown runway")

	// ErrUnknownParkingStand is returned when a token names a parking stand this airport does not have.
	ErrUnknownParkingStand = errors.New("unknown parking stand")

	// ErrDuplicateResource is returned when a runway or parking stand id is added twice.
	ErrDuplicateResource = errors.New("resource id already exists")

	// ErrInvalidResourceID is returned when a runway or parking stand id is empty.
	ErrInvalidResourceID = errors.New("resource id cannot be empty")

	// ErrAirportClosed is returned for calls made after Close.
	ErrAirportClosed = errors.New("airport is closed")
)
