package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

const tableColumns = `table_id, table_name, capacity, reservation_id, created_at, updated_at`

// TableRepo provides CRUD operations for tables plus the combined
// transactional updates that seat a reservation at a table and free it
// again.  Those two operations are the only place in the system where
// two rows must change together; everything else is a single
// statement.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// List returns every table ordered by name.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables ORDER BY table_name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTables(rows)
}

// ListAvailable returns only unoccupied tables, ordered by name.
func (r *TableRepo) ListAvailable(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables
	           WHERE reservation_id IS NULL
	           ORDER BY table_name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTables(rows)
}

// Create inserts a new table and queries the row back to populate the
// generated ID and timestamps.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const q = `INSERT INTO tables (table_name, capacity, reservation_id) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, t.TableName, t.Capacity, t.ReservationID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT ` + tableColumns + ` FROM tables WHERE table_id = ?`
	return scanTableRow(r.db.QueryRowContext(ctx, sel, t.ID), t)
}

// GetByID retrieves a table by its id.  It returns ErrTableNotFound
// when no row exists.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables WHERE table_id = ?`
	var t model.Table
	if err := scanTableRow(r.db.QueryRowContext(ctx, q, id), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Seat assigns a booked reservation to a free table.  Both writes run
// in one transaction: the table takes the reservation_id and the
// reservation moves to seated.  Either both commit or neither does.
// The table update is guarded with "reservation_id IS NULL" so a
// concurrent seat of the same table loses cleanly with
// ErrTableOccupied instead of silently overwriting the winner.
func (r *TableRepo) Seat(ctx context.Context, tableID, reservationID uint64) (*model.Table, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const occupy = `UPDATE tables SET reservation_id = ?
	                WHERE table_id = ? AND reservation_id IS NULL`
	result, err := tx.ExecContext(ctx, occupy, reservationID, tableID)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, r.classifyGuardFailure(ctx, tx, tableID, ErrTableOccupied)
	}

	const seat = `UPDATE reservations SET status = ? WHERE reservation_id = ?`
	if _, err := tx.ExecContext(ctx, seat, model.StatusSeated, reservationID); err != nil {
		return nil, err
	}

	var t model.Table
	const sel = `SELECT ` + tableColumns + ` FROM tables WHERE table_id = ?`
	if err := scanTableRow(tx.QueryRowContext(ctx, sel, tableID), &t); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &t, nil
}

// Finish clears an occupied table and closes out its reservation.
// The table's reservation_id is set back to NULL and the reservation
// moves to finished, atomically.  A table that is already free fails
// with ErrTableNotOccupied.
func (r *TableRepo) Finish(ctx context.Context, tableID, reservationID uint64) (*model.Table, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const release = `UPDATE tables SET reservation_id = NULL
	                 WHERE table_id = ? AND reservation_id IS NOT NULL`
	result, err := tx.ExecContext(ctx, release, tableID)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, r.classifyGuardFailure(ctx, tx, tableID, ErrTableNotOccupied)
	}

	const finish = `UPDATE reservations SET status = ? WHERE reservation_id = ?`
	if _, err := tx.ExecContext(ctx, finish, model.StatusFinished, reservationID); err != nil {
		return nil, err
	}

	var t model.Table
	const sel = `SELECT ` + tableColumns + ` FROM tables WHERE table_id = ?`
	if err := scanTableRow(tx.QueryRowContext(ctx, sel, tableID), &t); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &t, nil
}

// classifyGuardFailure decides why a guarded update touched no rows:
// either the table is gone (ErrTableNotFound) or its occupancy flipped
// under us, in which case the provided conflict sentinel is returned.
func (r *TableRepo) classifyGuardFailure(ctx context.Context, tx *sql.Tx, tableID uint64, conflict error) error {
	const q = `SELECT table_id FROM tables WHERE table_id = ?`
	var id uint64
	if err := tx.QueryRowContext(ctx, q, tableID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTableNotFound
		}
		return err
	}
	return conflict
}

func scanTableRow(row *sql.Row, t *model.Table) error {
	var resID sql.NullInt64
	if err := row.Scan(&t.ID, &t.TableName, &t.Capacity, &resID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return err
	}
	if resID.Valid {
		id := uint64(resID.Int64)
		t.ReservationID = &id
	} else {
		t.ReservationID = nil
	}
	return nil
}

func scanTables(rows *sql.Rows) ([]model.Table, error) {
	out := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		var resID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.TableName, &t.Capacity, &resID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if resID.Valid {
			id := uint64(resID.Int64)
			t.ReservationID = &id
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
