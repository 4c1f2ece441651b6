package database

import (
	"context"
	"database/sql"
	"fmt"
)

// The DDL is kept to the subset shared by Postgres and SQLite.
var (
	createMovementsTableSQL = `
CREATE TABLE IF NOT EXISTS %s_movements (
    airport_id        VARCHAR       NOT NULL,
    token_id          VARCHAR       NOT NULL,
    aircraft_id       VARCHAR       NOT NULL,
    kind              VARCHAR       NOT NULL,
    outcome           VARCHAR       NOT NULL,
    runway_id         VARCHAR       NOT NULL,
    parking_stand_id  VARCHAR       NOT NULL,
    recorded_at       TIMESTAMP     NOT NULL,

    PRIMARY KEY (airport_id, token_id)
);`

	createMovementsIndexSQL = `
CREATE INDEX IF NOT EXISTS %s
ON %s_movements (airport_id, aircraft_id);`
)

// Migrate creates the movements table with its aircraft index.
func Migrate(ctx context.Context, db *sql.DB, tableName string) error {
	if err := createMovementsTable(ctx, db, tableName); err != nil {
		return err
	}

	if err := createMovementsIndex(ctx, db, tableName); err != nil {
		return err
	}

	return nil
}

func createMovementsTable(ctx context.Context, db *sql.DB, tableName string) error {
	var query = fmt.Sprintf(createMovementsTableSQL, tableName)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create movements table: %w", err)
	}
	return nil
}

func createMovementsIndex(ctx context.Context, db *sql.DB, tableName string) error {
	var (
		indexName = fmt.Sprintf("%s_movements_aircraft_idx", tableName)
		query     = fmt.Sprintf(createMovementsIndexSQL, indexName, tableName)
	)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create movements index: %w", err)
	}
	return nil
}
