package validation

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Allowed and required request fields for reservation create/update.
// created_at, updated_at and reservation_id are tolerated so a client
// can echo back a previously read record unchanged.
var (
	reservationFields = []string{
		"first_name", "last_name", "mobile_number",
		"reservation_date", "reservation_time",
		"status", "people", "created_at", "updated_at", "reservation_id",
	}
	requiredReservationFields = []string{
		"first_name", "last_name", "people",
		"reservation_date", "reservation_time", "mobile_number",
	}
)

var (
	timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)
	dateRe = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

// HasOnlyReservationFields rejects bodies containing fields outside
// the allowed set, naming every offender.
func HasOnlyReservationFields(vc *Context) *Error {
	if invalid := unknownFields(vc.Fields, reservationFields); len(invalid) > 0 {
		return BadRequest("Invalid field(s): %s", strings.Join(invalid, ", "))
	}
	return nil
}

// HasRequiredReservationFields requires each mandatory field to be
// present and non-empty, reporting the first one missing.
func HasRequiredReservationFields(vc *Context) *Error {
	if field, missing := firstMissing(vc.Fields, requiredReservationFields); missing {
		return BadRequest("A '%s' property is required.", field)
	}
	return nil
}

// TimeIsValid requires reservation_time to be a 24-hour HH:MM or
// HH:MM:SS value.
func TimeIsValid(vc *Context) *Error {
	t, _ := vc.str("reservation_time")
	if !timeRe.MatchString(t) {
		return BadRequest("reservation_time is not valid")
	}
	return nil
}

// TimeIsDuringOpenHours requires reservation_time to fall within
// [10:30, 21:30].  The format is fixed width, so comparing the HH:MM
// prefix lexicographically is sufficient.
func TimeIsDuringOpenHours(vc *Context) *Error {
	t, _ := vc.str("reservation_time")
	if len(t) < 5 {
		return BadRequest("reservation_time is not valid")
	}
	if hm := t[:5]; hm < "10:30" || hm > "21:30" {
		return BadRequest("Reservation time must be between 10:30AM and 9:30PM")
	}
	return nil
}

// DateIsValid requires reservation_date to be a YYYY-MM-DD value.
func DateIsValid(vc *Context) *Error {
	d, _ := vc.str("reservation_date")
	if !dateRe.MatchString(d) {
		return BadRequest("reservation_date is not valid")
	}
	return nil
}

// DayIsNotTuesday rejects reservations on Tuesdays, when the
// restaurant is closed.  The weekday comes from the combined date and
// time so the rule holds across midnight-adjacent edge cases.
func DayIsNotTuesday(vc *Context) *Error {
	when, ok := vc.reservationInstant()
	if !ok {
		return nil // DateIsInFuture rejects unparseable values
	}
	if when.Weekday() == time.Tuesday {
		return BadRequest("Restaurant is closed on Tuesdays")
	}
	return nil
}

// DateIsInFuture requires the combined date and time to be strictly
// after now.  A date that matches the format but is not a real
// calendar date (2999-02-30) fails to parse and is rejected here too;
// no instant that cannot be placed on the calendar is in the future.
func DateIsInFuture(vc *Context) *Error {
	when, ok := vc.reservationInstant()
	if !ok || !when.After(vc.Now) {
		return BadRequest("Reservation must be in the future")
	}
	return nil
}

// StatusIsBooked allows a new reservation to carry no status or the
// literal "booked", nothing else.
func StatusIsBooked(vc *Context) *Error {
	raw, ok := vc.Fields["status"]
	if !ok || raw == nil {
		return nil
	}
	if s, isStr := raw.(string); isStr && (s == "" || s == model.StatusBooked) {
		return nil
	}
	return BadRequest("status must be 'booked' when making a reservation, not '%v'", raw)
}

// StatusIsNotFinished blocks the general update path from writing the
// terminal status; only the unseat flow may finish a reservation.
func StatusIsNotFinished(vc *Context) *Error {
	if s, _ := vc.str("status"); s == model.StatusFinished {
		return BadRequest("status cannot be updated to '%s'", model.StatusFinished)
	}
	return nil
}

// PeopleIsPositiveInteger requires people to be a whole JSON number
// greater than zero and within the column range.  Strings and
// fractions are rejected.
func PeopleIsPositiveInteger(vc *Context) *Error {
	f, ok := vc.Fields["people"].(float64)
	if !ok || f != math.Trunc(f) || f <= 0 || f > math.MaxUint32 {
		return BadRequest("people must be a number greater than 0")
	}
	return nil
}

// StatusIsKnown requires the status field to be one of the four
// reservation statuses.  Used by the status transition route.
func StatusIsKnown(vc *Context) *Error {
	s, _ := vc.str("status")
	if !model.ValidStatus(s) {
		return BadRequest("status: '%s' is not valid", s)
	}
	return nil
}

// ReservationIsUpdatable rejects transitions out of a terminal status.
// The loaded reservation must be booked or seated to accept a change.
func ReservationIsUpdatable(vc *Context) *Error {
	if !vc.Reservation.Updatable() {
		return BadRequest("'%s' status cannot be updated", model.StatusFinished)
	}
	return nil
}

// ReservationIsBooked requires the loaded reservation to be in the
// booked status; only booked parties can be seated.
func ReservationIsBooked(vc *Context) *Error {
	if vc.Reservation.Status != model.StatusBooked {
		return BadRequest("Reservation status %s is not valid", vc.Reservation.Status)
	}
	return nil
}

// reservationInstant combines reservation_date and reservation_time
// into a single local-time instant.  ok is false when either part does
// not parse, including format-valid dates that do not exist on the
// calendar.
func (vc *Context) reservationInstant() (time.Time, bool) {
	d, _ := vc.str("reservation_date")
	t, _ := vc.str("reservation_time")
	if len(t) == 5 {
		t += ":00"
	}
	when, err := time.ParseInLocation("2006-01-02 15:04:05", d+" "+t, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return when, true
}
