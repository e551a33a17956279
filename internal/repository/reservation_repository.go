package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// reservationColumns is the shared select list.  Date and time columns
// are formatted in SQL so rows scan straight into the fixed-width
// strings the API exposes.
const reservationColumns = `reservation_id, first_name, last_name, mobile_number,
       DATE_FORMAT(reservation_date, '%Y-%m-%d'),
       TIME_FORMAT(reservation_time, '%H:%i:%s'),
       people, status, created_at, updated_at`

var nonDigits = regexp.MustCompile(`\D`)

// ReservationRepo provides CRUD operations and filtered listings for
// reservations.  All timestamp fields are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ListByDate returns every reservation for the given calendar date,
// ordered by reservation time ascending.  No status filter is applied;
// callers see cancelled and finished rows as well.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
	           FROM reservations
	           WHERE reservation_date = ?
	           ORDER BY reservation_time`
	rows, err := r.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

// SearchByMobile returns reservations whose mobile number contains the
// digits of the given partial number, ordered by date ascending.  Both
// sides of the comparison are stripped of formatting characters so
// "(555) 123" matches "555-123-4567".
func (r *ReservationRepo) SearchByMobile(ctx context.Context, number string) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + `
	           FROM reservations
	           WHERE REPLACE(REPLACE(REPLACE(REPLACE(mobile_number, '(', ''), ')', ''), '-', ''), ' ', '')
	                 LIKE CONCAT('%', ?, '%')
	           ORDER BY reservation_date`
	rows, err := r.db.QueryContext(ctx, q, nonDigits.ReplaceAllString(number, ""))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

// Create inserts a new reservation and populates the generated ID,
// status and timestamps on the provided record by querying the row
// back after the insert.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (first_name, last_name, mobile_number, reservation_date, reservation_time, people, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		res.FirstName, res.LastName, res.MobileNumber,
		res.ReservationDate, res.ReservationTime, res.People, res.Status,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return r.reload(ctx, res)
}

// GetByID retrieves a reservation by its id.  It returns
// ErrReservationNotFound when no row exists.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.FirstName, &res.LastName, &res.MobileNumber,
		&res.ReservationDate, &res.ReservationTime,
		&res.People, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// Update writes every mutable column of the reservation and reloads
// the row so the caller observes the stored values, including the
// refreshed updated_at.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET first_name = ?, last_name = ?, mobile_number = ?,
	               reservation_date = ?, reservation_time = ?, people = ?, status = ?
	           WHERE reservation_id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		res.FirstName, res.LastName, res.MobileNumber,
		res.ReservationDate, res.ReservationTime, res.People, res.Status,
		res.ID,
	); err != nil {
		return err
	}
	return r.reload(ctx, res)
}

// reload re-reads the full row into res.  A vanished row surfaces as
// ErrReservationNotFound.
func (r *ReservationRepo) reload(ctx context.Context, res *model.Reservation) error {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ?`
	err := r.db.QueryRowContext(ctx, q, res.ID).Scan(
		&res.ID, &res.FirstName, &res.LastName, &res.MobileNumber,
		&res.ReservationDate, &res.ReservationTime,
		&res.People, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReservationNotFound
	}
	return err
}

func scanReservations(rows *sql.Rows) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(
			&res.ID, &res.FirstName, &res.LastName, &res.MobileNumber,
			&res.ReservationDate, &res.ReservationTime,
			&res.People, &res.Status, &res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
