package db

import (
	"fmt"

	"gorm.io/gorm"
)

// incident_records keeps the upstream document verbatim in "document"; the
// columns beside it are promoted copies used for lookup and indexing.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS incident_records (
		id              BIGSERIAL PRIMARY KEY,
		center_id       TEXT NOT NULL,
		recorded_on     DATE,
		zone            TEXT NOT NULL DEFAULT '',
		district        INT NOT NULL DEFAULT 0,
		latitude        DOUBLE PRECISION NOT NULL,
		longitude       DOUBLE PRECISION NOT NULL,
		document        JSONB NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_incident_records_center_id ON incident_records(center_id);`,
	`CREATE INDEX IF NOT EXISTS idx_incident_records_lat_lng ON incident_records(latitude, longitude);`,
	`CREATE INDEX IF NOT EXISTS idx_incident_records_zone ON incident_records(zone);`,
	`CREATE TABLE IF NOT EXISTS admins (
		id              BIGSERIAL PRIMARY KEY,
		center_id       TEXT NOT NULL,
		password_hash   TEXT NOT NULL,
		latitude        DOUBLE PRECISION NOT NULL,
		longitude       DOUBLE PRECISION NOT NULL,
		center_name     TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_admins_center_id ON admins(center_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
