// Package repository holds data access logic for reservations and
// tables.  Sentinel errors defined here let handlers translate
// storage-level outcomes into HTTP statuses without inspecting SQL
// errors directly.
package repository

import "errors"

// ErrReservationNotFound is returned when a reservation lookup yields
// no rows.  Handlers should translate this into a 404 response.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrTableNotFound is returned when a table lookup yields no rows.
var ErrTableNotFound = errors.New("table not found")

// ErrTableOccupied is returned by Seat when the target table acquired
// an occupant between the handler's free check and the transactional
// update.  The transaction is rolled back; nothing is persisted.
var ErrTableOccupied = errors.New("table is occupied")

// ErrTableNotOccupied is the Finish counterpart: the table was already
// cleared by the time the transaction ran.
var ErrTableNotOccupied = errors.New("table is not occupied")
