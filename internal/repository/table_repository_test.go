package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

func newTableRepo(t *testing.T) (*TableRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTableRepo(db), mock
}

func tableRow(id int64, name string, capacity int64, reservationID any) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"table_id", "table_name", "capacity", "reservation_id", "created_at", "updated_at",
	}).AddRow(id, name, capacity, reservationID, now, now)
}

func TestSeatCommitsBothWrites(t *testing.T) {
	repo, mock := newTableRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tables SET reservation_id").
		WithArgs(int64(10), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs("seated", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM tables WHERE table_id").
		WithArgs(int64(5)).
		WillReturnRows(tableRow(5, "Bar #1", 4, int64(10)))
	mock.ExpectCommit()

	table, err := repo.Seat(context.Background(), 5, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), table.ID)
	require.NotNil(t, table.ReservationID)
	assert.Equal(t, uint64(10), *table.ReservationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRollsBackWhenReservationUpdateFails(t *testing.T) {
	repo, mock := newTableRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tables SET reservation_id").
		WithArgs(int64(10), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs("seated", int64(10)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.Seat(context.Background(), 5, 10)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatLosesRaceToOccupiedTable(t *testing.T) {
	repo, mock := newTableRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tables SET reservation_id").
		WithArgs(int64(10), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT table_id FROM tables WHERE table_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"table_id"}).AddRow(int64(5)))
	mock.ExpectRollback()

	_, err := repo.Seat(context.Background(), 5, 10)
	assert.ErrorIs(t, err, ErrTableOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatMissingTable(t *testing.T) {
	repo, mock := newTableRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tables SET reservation_id").
		WithArgs(int64(10), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT table_id FROM tables WHERE table_id").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Seat(context.Background(), 99, 10)
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishCommitsBothWrites(t *testing.T) {
	repo, mock := newTableRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tables SET reservation_id = NULL").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE reservations SET status").
		WithArgs("finished", int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM tables WHERE table_id").
		WithArgs(int64(5)).
		WillReturnRows(tableRow(5, "Bar #1", 4, nil))
	mock.ExpectCommit()

	table, err := repo.Finish(context.Background(), 5, 10)
	require.NoError(t, err)
	assert.Nil(t, table.ReservationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishOnFreeTable(t *testing.T) {
	repo, mock := newTableRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tables SET reservation_id = NULL").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT table_id FROM tables WHERE table_id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"table_id"}).AddRow(int64(5)))
	mock.ExpectRollback()

	_, err := repo.Finish(context.Background(), 5, 10)
	assert.ErrorIs(t, err, ErrTableNotOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAvailableFiltersOccupied(t *testing.T) {
	repo, mock := newTableRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"table_id", "table_name", "capacity", "reservation_id", "created_at", "updated_at",
	}).
		AddRow(int64(1), "#1", int64(6), nil, now, now).
		AddRow(int64(2), "#2", int64(2), nil, now, now)
	mock.ExpectQuery("WHERE reservation_id IS NULL").WillReturnRows(rows)

	tables, err := repo.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "#1", tables[0].TableName)
	assert.Nil(t, tables[0].ReservationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTablePopulatesGeneratedFields(t *testing.T) {
	repo, mock := newTableRepo(t)

	mock.ExpectExec("INSERT INTO tables").
		WithArgs("Bar #1", int64(4), nil).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("FROM tables WHERE table_id").
		WithArgs(int64(3)).
		WillReturnRows(tableRow(3, "Bar #1", 4, nil))

	table := &model.Table{TableName: "Bar #1", Capacity: 4}
	require.NoError(t, repo.Create(context.Background(), table))
	assert.Equal(t, uint64(3), table.ID)
	assert.False(t, table.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTableNotFound(t *testing.T) {
	repo, mock := newTableRepo(t)

	mock.ExpectQuery("FROM tables WHERE table_id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTableNotFound)
}
