package database

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is an interface that both sql.DB and sql.Tx implement.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Queries provides table-aware database operations.
type Queries struct {
	db        DBTX
	tableName string
}

// NewQueries creates a new Queries instance with the given table name.
func NewQueries(db DBTX, tableName string) *Queries {
	return &Queries{
		db:        db,
		tableName: tableName,
	}
}

// Placeholders use the $N form, which both lib/pq and go-sqlite3 accept.
var (
	insertMovementSQL = `
INSERT INTO %s_movements (airport_id, token_id, aircraft_id, kind, outcome, runway_id, parking_stand_id, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (airport_id, token_id) DO NOTHING;`

	getMovementSQL = `
SELECT airport_id, token_id, aircraft_id, kind, outcome, runway_id, parking_stand_id, recorded_at
FROM %s_movements
WHERE airport_id = $1 AND token_id = $2;`

	listMovementsSQL = `
SELECT airport_id, token_id, aircraft_id, kind, outcome, runway_id, parking_stand_id, recorded_at
FROM %s_movements
WHERE airport_id = $1
ORDER BY recorded_at ASC, token_id ASC;`

	listAircraftMovementsSQL = `
SELECT airport_id, token_id, aircraft_id, kind, outcome, runway_id, parking_stand_id, recorded_at
FROM %s_movements
WHERE airport_id = $1 AND aircraft_id = $2
ORDER BY recorded_at ASC, token_id ASC;`
)

// InsertMovement inserts a movement. A second insert for the same token is ignored.
func (q *Queries) InsertMovement(ctx context.Context, movement *MovementRecord) error {
	var query = fmt.Sprintf(insertMovementSQL, q.tableName)
	_, err := q.db.ExecContext(ctx, query,
		movement.AirportID, movement.TokenID, movement.AircraftID, movement.Kind, movement.Outcome,
		movement.RunwayID, movement.ParkingStandID, movement.RecordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}
	return nil
}

// GetMovement retrieves a single movement by token id, or nil if not found.
func (q *Queries) GetMovement(ctx context.Context, airportID, tokenID string) (*MovementRecord, error) {
	var (
		query    = fmt.Sprintf(getMovementSQL, q.tableName)
		movement MovementRecord
		err      = q.db.QueryRowContext(ctx, query, airportID, tokenID).Scan(
			&movement.AirportID, &movement.TokenID, &movement.AircraftID, &movement.Kind,
			&movement.Outcome, &movement.RunwayID, &movement.ParkingStandID, &movement.RecordedAt,
		)
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movement: %w", err)
	}

	return &movement, nil
}

// ListMovements returns all movements of an airport, oldest first.
func (q *Queries) ListMovements(ctx context.Context, airportID string) ([]*MovementRecord, error) {
	var query = fmt.Sprintf(listMovementsSQL, q.tableName)
	return q.listMovements(ctx, query, airportID)
}

// ListAircraftMovements returns all movements of one aircraft, oldest first.
func (q *Queries) ListAircraftMovements(ctx context.Context, airportID, aircraftID string) ([]*MovementRecord, error) {
	var query = fmt.Sprintf(listAircraftMovementsSQL, q.tableName)
	return q.listMovements(ctx, query, airportID, aircraftID)
}

func (q *Queries) listMovements(ctx context.Context, query string, args ...interface{}) ([]*MovementRecord, error) {
	var rows, err = q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	var movements []*MovementRecord
	for rows.Next() {
		var movement MovementRecord
		if err := rows.Scan(&movement.AirportID, &movement.TokenID, &movement.AircraftID, &movement.Kind,
			&movement.Outcome, &movement.RunwayID, &movement.ParkingStandID, &movement.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, &movement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return movements, nil
}
