package database

import "time"

// MovementRecord represents a movement record in the database.
type MovementRecord struct {
	AirportID      string
	TokenID        string
	AircraftID     string
	Kind           string
	Outcome        string
	RunwayID       string
	ParkingStandID string
	RecordedAt     time.Time
}
