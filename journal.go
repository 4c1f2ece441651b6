package airport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go-airport/database"
)

var (
	// ErrInvalidAirportID is returned when the airportID cannot be used as a table prefix
	ErrInvalidAirportID = errors.New("airportID must contain only lowercase letters, numbers, and underscores, and start with a letter")

	// validAirportIDPattern validates SQL-safe identifiers
	validAirportIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// MovementKind is the operation a movement describes.
type MovementKind string

const (
	MovementLanding MovementKind = "landing"
	MovementTakeoff MovementKind = "takeoff"
)

// MovementOutcome is how a reserved operation ended.
type MovementOutcome string

const (
	MovementCompleted MovementOutcome = "completed"
	MovementExpired   MovementOutcome = "expired"
)

// Movement is a journal entry for a landing or takeoff that completed or whose token expired.
type Movement struct {
	TokenID        string          `json:"token_id"`
	AirportID      string          `json:"airport_id"`
	AircraftID     string          `json:"aircraft_id"`
	Kind           MovementKind    `json:"kind"`
	Outcome        MovementOutcome `json:"outcome"`
	RunwayID       string          `json:"runway_id"`
	ParkingStandID string          `json:"parking_stand_id"`
	RecordedAt     time.Time       `json:"recorded_at"`
}

// Journal receives movements as they happen. It is write-only: the airport
// never reads it back.
type Journal interface {
	RecordMovement(ctx context.Context, movement Movement) error
}

type nopJournal struct{}

func (nopJournal) RecordMovement(context.Context, Movement) error { return nil }

// SQLJournal writes movements to a <airportID>_movements table.
type SQLJournal struct {
	airportID string
	queries   *database.Queries
}

// NewSQLJournal validates airportID, migrates the movements table and returns a journal writing to db.
// db may be a Postgres (lib/pq) or SQLite (go-sqlite3) connection.
func NewSQLJournal(ctx context.Context, db *sql.DB, airportID string) (*SQLJournal, error) {
	if err := ValidateAirportID(airportID); err != nil {
		return nil, fmt.Errorf("invalid airportID: %w", err)
	}

	if err := database.Migrate(ctx, db, airportID); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLJournal{
		airportID: airportID,
		queries:   database.NewQueries(db, airportID),
	}, nil
}

// RecordMovement inserts a movement. Recording the same token twice is a no-op.
func (j *SQLJournal) RecordMovement(ctx context.Context, movement Movement) error {
	var record = &database.MovementRecord{
		AirportID:      j.airportID,
		TokenID:        movement.TokenID,
		AircraftID:     movement.AircraftID,
		Kind:           string(movement.Kind),
		Outcome:        string(movement.Outcome),
		RunwayID:       movement.RunwayID,
		ParkingStandID: movement.ParkingStandID,
		RecordedAt:     movement.RecordedAt,
	}

	if err := j.queries.InsertMovement(ctx, record); err != nil {
		return fmt.Errorf("failed to record %s of %q: %w", movement.Kind, movement.AircraftID, err)
	}

	return nil
}

// ListMovements returns every recorded movement in recording order.
func (j *SQLJournal) ListMovements(ctx context.Context) ([]Movement, error) {
	var records, err = j.queries.ListMovements(ctx, j.airportID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	return toMovements(records), nil
}

// ListAircraftMovements returns the recorded movements of one aircraft in recording order.
func (j *SQLJournal) ListAircraftMovements(ctx context.Context, aircraftID string) ([]Movement, error) {
	var records, err = j.queries.ListAircraftMovements(ctx, j.airportID, aircraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements of %q: %w", aircraftID, err)
	}

	return toMovements(records), nil
}

func toMovements(records []*database.MovementRecord) []Movement {
	var movements = make([]Movement, len(records))
	for i, record := range records {
		movements[i] = Movement{
			TokenID:        record.TokenID,
			AirportID:      record.AirportID,
			AircraftID:     record.AircraftID,
			Kind:           MovementKind(record.Kind),
			Outcome:        MovementOutcome(record.Outcome),
			RunwayID:       record.RunwayID,
			ParkingStandID: record.ParkingStandID,
			RecordedAt:     record.RecordedAt,
		}
	}
	return movements
}

// ValidateAirportID checks if the airportID is valid for use as a SQL table prefix.
func ValidateAirportID(airportID string) error {
	if airportID == "" {
		return errors.New("airportID cannot be empty")
	}

	if len(airportID) > 40 {
		return errors.New("airportID must be 40 characters or less")
	}

	if !validAirportIDPattern.MatchString(airportID) {
		return ErrInvalidAirportID
	}

	return nil
}
