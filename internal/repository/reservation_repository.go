package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/campuslife/court-reservation/internal/calendar"
	"github.com/campuslife/court-reservation/internal/model"
)

// mysqlDupEntry is the MySQL error number raised when an INSERT violates
// a unique index.
const mysqlDupEntry = 1062

// ReservationRepo provides data access to the reservations table. Dates
// are stored in a DATE column and always interpreted as UTC calendar
// dates; callers must truncate timestamps before passing them in.
//
// The table carries a compound unique index on (court_id, res_date, slot).
// That index, not application logic, is what makes Commit an atomic
// check-and-insert: no matter how many processes race, the database
// accepts exactly one row per key and rejects the rest with a duplicate
// key error.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// translateCommitErr maps a duplicate-key violation of the compound
// unique index onto ErrSlotAlreadyReserved and passes every other error
// through untouched.
func translateCommitErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDupEntry {
		return ErrSlotAlreadyReserved
	}
	return err
}

// SlotsForDate returns the set of slots reserved on the given court and
// UTC calendar date. No ordering is guaranteed; callers project the set
// into calendar order using the slot enumeration.
func (r *ReservationRepo) SlotsForDate(ctx context.Context, courtID uint64, date time.Time) (map[string]bool, error) {
	const q = `SELECT slot FROM reservations WHERE court_id = ? AND res_date = ?`
	rows, err := r.db.QueryContext(ctx, q, courtID, calendar.FormatDate(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reserved := make(map[string]bool)
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		reserved[slot] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reserved, nil
}

// Commit atomically inserts a reservation for (court, date, slot). The
// uniqueness check and the insert are a single statement; when a racing
// request has already taken the key, the unique index rejects the insert
// and ErrSlotAlreadyReserved is returned. On success the record's ID and
// CreatedAt are populated and its Date is normalized to UTC midnight.
func (r *ReservationRepo) Commit(ctx context.Context, res *model.Reservation) error {
	res.Date = calendar.Truncate(res.Date)
	const qInsert = `INSERT INTO reservations (court_id, user_id, res_date, slot) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, qInsert, res.CourtID, res.UserID, calendar.FormatDate(res.Date), res.Slot)
	if err != nil {
		return translateCommitErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	const qSelect = `SELECT created_at FROM reservations WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, res.ID).Scan(&res.CreatedAt)
}

// Delete cancels a booking identified by (court, date, slot, user). The
// user id is part of the key so one user's cancellation can never remove
// another user's record. ErrReservationNotFound is returned when no row
// matches.
func (r *ReservationRepo) Delete(ctx context.Context, courtID uint64, date time.Time, slot string, userID uint64) error {
	const q = `DELETE FROM reservations WHERE court_id = ? AND res_date = ? AND slot = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, courtID, calendar.FormatDate(date), slot, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ReservationDetail is a reservation joined with its court's name and
// type for display to the booking user. It is returned by ListByUser.
type ReservationDetail struct {
	ID        uint64 `json:"id"`
	CourtID   uint64 `json:"court_id"`
	CourtName string `json:"court_name"`
	CourtType string `json:"court_type"`
	Date      string `json:"date"`
	Slot      string `json:"slot"`
	CreatedAt string `json:"created_at"`
}

// ListByUser returns all bookings made by a user, newest first. When the
// user has no bookings an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.court_id, c.name, c.type, r.res_date, r.slot, r.created_at
	           FROM reservations r
	           JOIN courts c ON c.id = r.court_id
	           WHERE r.user_id = ?
	           ORDER BY r.res_date DESC, r.slot DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var date, created time.Time
		if err := rows.Scan(&d.ID, &d.CourtID, &d.CourtName, &d.CourtType, &date, &d.Slot, &created); err != nil {
			return nil, err
		}
		d.Date = calendar.FormatDate(date)
		d.CreatedAt = created.UTC().Format(time.RFC3339)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
