package model

import "time"

// Reservation statuses.  A reservation starts out booked, moves to
// seated when assigned to a table, and ends up finished when the table
// is cleared.  Cancellation is only reachable from booked.
const (
	StatusBooked    = "booked"
	StatusSeated    = "seated"
	StatusFinished  = "finished"
	StatusCancelled = "cancelled"
)

// Reservation is a guest booking record.  Dates and times are kept as
// the fixed-width strings used on the wire ("2006-01-02" and
// "15:04:05") rather than time.Time so that what the client sent is
// what the client reads back.
//
// Fields:
//  ID              – reservations.reservation_id
//  FirstName       – guest first name
//  LastName        – guest last name
//  MobileNumber    – contact number
//  ReservationDate – calendar date, YYYY-MM-DD
//  ReservationTime – time of day, HH:MM:SS (24h)
//  People          – party size
//  Status          – lifecycle status (see constants above)
//  CreatedAt       – creation timestamp
//  UpdatedAt       – last update timestamp
type Reservation struct {
	ID              uint64    `json:"reservation_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	MobileNumber    string    `json:"mobile_number"`
	ReservationDate string    `json:"reservation_date"`
	ReservationTime string    `json:"reservation_time"`
	People          uint32    `json:"people"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ValidStatus reports whether s is one of the known reservation
// statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusBooked, StatusSeated, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// Updatable reports whether a reservation in its current status may
// still transition.  Finished and cancelled reservations are terminal.
func (r *Reservation) Updatable() bool {
	return r.Status == StatusBooked || r.Status == StatusSeated
}
