package model

import "time"

// Table is a seating resource in the dining room.  ReservationID is
// the back reference to the reservation currently seated at the table;
// nil means the table is free.  Occupancy is derived solely from this
// field.
type Table struct {
	ID            uint64    `json:"table_id"`
	TableName     string    `json:"table_name"`
	Capacity      uint32    `json:"capacity"`
	ReservationID *uint64   `json:"reservation_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Occupied reports whether a reservation is currently seated here.
func (t *Table) Occupied() bool {
	return t.ReservationID != nil
}
