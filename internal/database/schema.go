package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the idempotent DDL for the service. The compound unique
// index uq_reservations_court_date_slot is the load-bearing piece: it is
// what turns the reservation commit into an atomic check-and-insert, so
// the no-double-booking invariant holds even with multiple service
// instances writing concurrently. Application locks alone could not
// provide that guarantee.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS courts (
        id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        name        VARCHAR(100) NOT NULL,
        type        ENUM('tennis','basketball','football') NOT NULL,
        created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_courts_name (name)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS reservations (
        id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        court_id    BIGINT UNSIGNED NOT NULL,
        user_id     BIGINT UNSIGNED NOT NULL,
        res_date    DATE NOT NULL,
        slot        VARCHAR(11) NOT NULL,
        created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (id),
        UNIQUE KEY uq_reservations_court_date_slot (court_id, res_date, slot),
        KEY idx_reservations_user (user_id),
        CONSTRAINT fk_reservations_court FOREIGN KEY (court_id) REFERENCES courts (id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema statements in order. Every statement is
// idempotent, so running Migrate on each startup is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
