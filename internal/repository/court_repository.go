package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/campuslife/court-reservation/internal/model"
)

// CourtRepo encapsulates all database queries related to courts. It
// depends on a sql.DB connection pool which is configured at startup.
type CourtRepo struct {
	db *sql.DB
}

// NewCourtRepo constructs a CourtRepo with the provided DB handle. This
// allows dependency injection of the database in tests and at startup.
func NewCourtRepo(db *sql.DB) *CourtRepo { return &CourtRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span multiple repositories.
func (r *CourtRepo) DB() *sql.DB { return r.db }

// Create inserts a new court. On success the court's ID, CreatedAt and
// UpdatedAt fields are populated from the stored row. A duplicate name
// surfaces as a MySQL 1062 error which callers may map to a conflict.
func (r *CourtRepo) Create(ctx context.Context, c *model.Court) error {
	const qInsert = `INSERT INTO courts (name, type) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, c.Name, c.Type)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	// Query back the row to populate DB-generated timestamps.
	const qSelect = `SELECT name, type, created_at, updated_at FROM courts WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, c.ID).Scan(&c.Name, &c.Type, &c.CreatedAt, &c.UpdatedAt)
}

// GetByID fetches a court by its ID. It returns ErrCourtNotFound when no
// row exists.
func (r *CourtRepo) GetByID(ctx context.Context, id uint64) (*model.Court, error) {
	const q = `SELECT id, name, type, created_at, updated_at FROM courts WHERE id = ?`
	var c model.Court
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Type, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns all courts ordered by id. The campus owns a handful of
// courts, so no pagination is applied.
func (r *CourtRepo) List(ctx context.Context) ([]*model.Court, error) {
	const q = `SELECT id, name, type, created_at, updated_at FROM courts ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	courts := make([]*model.Court, 0)
	for rows.Next() {
		var c model.Court
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		courts = append(courts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courts, nil
}

// Delete removes a court by id. It returns ErrCourtNotFound when the id
// does not exist and ErrCourtHasReservations when the foreign key from
// reservations prevents the delete (MySQL error 1451).
func (r *CourtRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM courts WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return ErrCourtHasReservations
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCourtNotFound
	}
	return nil
}
