package airport

import (
	"time"

	"github.com/google/uuid"
)

// Outcome tells the caller whether it may proceed with an operation.
type Outcome int

const (
	// Hold means no resources were available; retry later.
	Hold Outcome = iota
	// Proceed means resources were reserved for the token holder.
	Proceed
)

func (o Outcome) String() string {
	if o == Proceed {
		return "proceed"
	}
	return "hold"
}

// LandingToken authorizes one aircraft to land on a runway and park at a stand
// before ExpiresAt. The zero value is a Hold token.
type LandingToken struct {
	ID             string
	Outcome        Outcome
	AircraftID     string
	RunwayID       string
	ParkingStandID string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the token is no longer valid at now.
// Hold tokens never expire.
func (t LandingToken) Expired(now time.Time) bool {
	return t.Outcome == Proceed && isExpired(t.ExpiresAt, now)
}

// TakeoffToken authorizes one parked aircraft to take off from a runway before ExpiresAt.
// The zero value is a Hold token.
type TakeoffToken struct {
	ID         string
	Outcome    Outcome
	AircraftID string
	RunwayID   string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the token is no longer valid at now.
// Hold tokens never expire.
func (t TakeoffToken) Expired(now time.Time) bool {
	return t.Outcome == Proceed && isExpired(t.ExpiresAt, now)
}

func newLandingToken(aircraftID, runwayID, parkingStandID string, validity time.Duration) LandingToken {
	var now = time.Now()
	return LandingToken{
		ID:             uuid.New().String(),
		Outcome:        Proceed,
		AircraftID:     aircraftID,
		RunwayID:       runwayID,
		ParkingStandID: parkingStandID,
		IssuedAt:       now,
		ExpiresAt:      now.Add(validity),
	}
}

func newTakeoffToken(aircraftID, runwayID string, validity time.Duration) TakeoffToken {
	var now = time.Now()
	return TakeoffToken{
		ID:         uuid.New().String(),
		Outcome:    Proceed,
		AircraftID: aircraftID,
		RunwayID:   runwayID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(validity),
	}
}

// isExpired checks if a deadline has been reached.
func isExpired(expiresAt, now time.Time) bool {
	return !now.Before(expiresAt)
}
