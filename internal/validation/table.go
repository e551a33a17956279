package validation

import (
	"math"
	"strings"
	"unicode/utf8"
)

var (
	tableFields         = []string{"table_name", "capacity", "reservation_id"}
	requiredTableFields = []string{"table_name", "capacity"}
)

// HasOnlyTableFields rejects bodies containing fields outside the
// allowed table set.
func HasOnlyTableFields(vc *Context) *Error {
	if invalid := unknownFields(vc.Fields, tableFields); len(invalid) > 0 {
		return BadRequest("Invalid field(s): %s", strings.Join(invalid, ", "))
	}
	return nil
}

// HasRequiredTableFields requires table_name and capacity.
func HasRequiredTableFields(vc *Context) *Error {
	if field, missing := firstMissing(vc.Fields, requiredTableFields); missing {
		return BadRequest("A '%s' property is required.", field)
	}
	return nil
}

// TableNameIsValid requires a table name of at least two characters.
func TableNameIsValid(vc *Context) *Error {
	name, _ := vc.str("table_name")
	if utf8.RuneCountInString(name) < 2 {
		return BadRequest("table_name must be at least 2 characters long")
	}
	return nil
}

// CapacityIsPositiveInteger requires capacity to be a whole JSON
// number greater than zero and within the column range.
func CapacityIsPositiveInteger(vc *Context) *Error {
	f, ok := vc.Fields["capacity"].(float64)
	if !ok || f != math.Trunc(f) || f <= 0 || f > math.MaxUint32 {
		return BadRequest("capacity must be a number greater than 0")
	}
	return nil
}

// HasReservationID requires a reservation_id in the seat request body.
func HasReservationID(vc *Context) *Error {
	if !truthy(vc.Fields["reservation_id"]) {
		return BadRequest("reservation_id is required")
	}
	return nil
}

// TableHasCapacity requires the loaded table to have room for the
// loaded reservation's whole party.
func TableHasCapacity(vc *Context) *Error {
	if vc.Table.Capacity < vc.Reservation.People {
		return BadRequest("Table does not have capacity to seat %d.", vc.Reservation.People)
	}
	return nil
}

// TableIsFree requires the loaded table to have no current occupant.
func TableIsFree(vc *Context) *Error {
	if vc.Table.Occupied() {
		return BadRequest("This table is occupied.")
	}
	return nil
}

// TableIsOccupied requires the loaded table to have a current
// occupant.  Guards the unseat flow.
func TableIsOccupied(vc *Context) *Error {
	if !vc.Table.Occupied() {
		return BadRequest("This table is not occupied.")
	}
	return nil
}
