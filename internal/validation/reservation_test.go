package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// validReservationFields returns a body that passes the whole create
// chain. 2999-01-16 is a Wednesday.
func validReservationFields() map[string]any {
	return map[string]any{
		"first_name":       "Rick",
		"last_name":        "Sanchez",
		"mobile_number":    "202-555-0164",
		"reservation_date": "2999-01-16",
		"reservation_time": "18:00",
		"people":           float64(2),
	}
}

func TestHasOnlyReservationFields(t *testing.T) {
	fields := validReservationFields()
	assert.Nil(t, HasOnlyReservationFields(&Context{Fields: fields}))

	fields["color"] = "purple"
	fields["halloween"] = true
	err := HasOnlyReservationFields(&Context{Fields: fields})
	require.NotNil(t, err)
	assert.Equal(t, 400, err.Status)
	assert.Equal(t, "Invalid field(s): color, halloween", err.Message)
}

func TestHasRequiredReservationFields(t *testing.T) {
	for _, field := range []string{
		"first_name", "last_name", "people",
		"reservation_date", "reservation_time", "mobile_number",
	} {
		t.Run("missing "+field, func(t *testing.T) {
			fields := validReservationFields()
			delete(fields, field)
			err := HasRequiredReservationFields(&Context{Fields: fields})
			require.NotNil(t, err)
			assert.Equal(t, 400, err.Status)
			assert.Equal(t, "A '"+field+"' property is required.", err.Message)
		})
		t.Run("empty "+field, func(t *testing.T) {
			fields := validReservationFields()
			fields[field] = ""
			err := HasRequiredReservationFields(&Context{Fields: fields})
			require.NotNil(t, err)
			assert.Equal(t, "A '"+field+"' property is required.", err.Message)
		})
	}

	assert.Nil(t, HasRequiredReservationFields(&Context{Fields: validReservationFields()}))
}

func TestTimeIsValid(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"18:00", true},
		{"18:00:30", true},
		{"00:00", true},
		{"23:59", true},
		{"24:00", false},
		{"18:60", false},
		{"1800", false},
		{"not-a-time", false},
		{"", false},
	}
	for _, tc := range cases {
		fields := validReservationFields()
		fields["reservation_time"] = tc.value
		err := TimeIsValid(&Context{Fields: fields})
		if tc.ok {
			assert.Nil(t, err, "value %q", tc.value)
		} else {
			require.NotNil(t, err, "value %q", tc.value)
			assert.Equal(t, "reservation_time is not valid", err.Message)
		}
	}
}

func TestTimeIsDuringOpenHours(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"10:29", false},
		{"10:30", true},
		{"13:15:30", true},
		{"21:30", true},
		{"21:31", false},
		{"09:00", false},
		{"22:00", false},
	}
	for _, tc := range cases {
		fields := validReservationFields()
		fields["reservation_time"] = tc.value
		err := TimeIsDuringOpenHours(&Context{Fields: fields})
		if tc.ok {
			assert.Nil(t, err, "value %q", tc.value)
		} else {
			require.NotNil(t, err, "value %q", tc.value)
			assert.Equal(t, "Reservation time must be between 10:30AM and 9:30PM", err.Message)
		}
	}
}

func TestDateIsValid(t *testing.T) {
	fields := validReservationFields()
	assert.Nil(t, DateIsValid(&Context{Fields: fields}))

	for _, bad := range []string{"01-16-2999", "2999/01/16", "not-a-date", ""} {
		fields["reservation_date"] = bad
		err := DateIsValid(&Context{Fields: fields})
		require.NotNil(t, err, "value %q", bad)
		assert.Equal(t, "reservation_date is not valid", err.Message)
	}
}

func TestDayIsNotTuesday(t *testing.T) {
	fields := validReservationFields()
	assert.Nil(t, DayIsNotTuesday(&Context{Fields: fields}))

	fields["reservation_date"] = "2999-01-15" // a Tuesday
	err := DayIsNotTuesday(&Context{Fields: fields})
	require.NotNil(t, err)
	assert.Equal(t, 400, err.Status)
	assert.Equal(t, "Restaurant is closed on Tuesdays", err.Message)

	// Unparseable values are left to the format checks.
	fields["reservation_date"] = "garbage"
	assert.Nil(t, DayIsNotTuesday(&Context{Fields: fields}))
}

func TestDateIsInFuture(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.Local)

	fields := validReservationFields()
	fields["reservation_date"] = "2025-06-04"

	fields["reservation_time"] = "11:00"
	err := DateIsInFuture(&Context{Fields: fields, Now: now})
	require.NotNil(t, err)
	assert.Equal(t, "Reservation must be in the future", err.Message)

	// Exactly now is still not in the future.
	fields["reservation_time"] = "12:00"
	err = DateIsInFuture(&Context{Fields: fields, Now: now})
	require.NotNil(t, err)
	assert.Equal(t, "Reservation must be in the future", err.Message)

	fields["reservation_time"] = "12:01"
	assert.Nil(t, DateIsInFuture(&Context{Fields: fields, Now: now}))
}

func TestDateIsInFutureRejectsImpossibleDates(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.Local)

	// These match YYYY-MM-DD but do not exist on the calendar, so they
	// cannot be in the future.
	for _, bad := range []string{"2999-02-30", "2999-13-01", "2999-04-31", "2999-00-10"} {
		fields := validReservationFields()
		fields["reservation_date"] = bad
		err := DateIsInFuture(&Context{Fields: fields, Now: now})
		require.NotNil(t, err, "value %q", bad)
		assert.Equal(t, 400, err.Status)
		assert.Equal(t, "Reservation must be in the future", err.Message)
	}
}

func TestStatusIsBooked(t *testing.T) {
	fields := validReservationFields()
	assert.Nil(t, StatusIsBooked(&Context{Fields: fields}))

	fields["status"] = "booked"
	assert.Nil(t, StatusIsBooked(&Context{Fields: fields}))

	for _, status := range []string{"seated", "finished", "cancelled"} {
		fields["status"] = status
		err := StatusIsBooked(&Context{Fields: fields})
		require.NotNil(t, err, "status %q", status)
		assert.Equal(t, "status must be 'booked' when making a reservation, not '"+status+"'", err.Message)
	}
}

func TestStatusIsNotFinished(t *testing.T) {
	fields := validReservationFields()
	fields["status"] = "seated"
	assert.Nil(t, StatusIsNotFinished(&Context{Fields: fields}))

	fields["status"] = "finished"
	err := StatusIsNotFinished(&Context{Fields: fields})
	require.NotNil(t, err)
	assert.Equal(t, "status cannot be updated to 'finished'", err.Message)
}

func TestPeopleIsPositiveInteger(t *testing.T) {
	cases := []struct {
		name  string
		value any
		ok    bool
	}{
		{"two", float64(2), true},
		{"one", float64(1), true},
		{"zero", float64(0), false},
		{"negative", float64(-1), false},
		{"fraction", 2.5, false},
		{"string", "2", false},
		{"missing", nil, false},
		{"beyond column range", float64(4294967296), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validReservationFields()
			if tc.value == nil {
				delete(fields, "people")
			} else {
				fields["people"] = tc.value
			}
			err := PeopleIsPositiveInteger(&Context{Fields: fields})
			if tc.ok {
				assert.Nil(t, err)
			} else {
				require.NotNil(t, err)
				assert.Equal(t, "people must be a number greater than 0", err.Message)
			}
		})
	}
}

func TestStatusIsKnown(t *testing.T) {
	for _, status := range []string{"booked", "seated", "finished", "cancelled"} {
		err := StatusIsKnown(&Context{Fields: map[string]any{"status": status}})
		assert.Nil(t, err, "status %q", status)
	}

	err := StatusIsKnown(&Context{Fields: map[string]any{"status": "delayed"}})
	require.NotNil(t, err)
	assert.Equal(t, "status: 'delayed' is not valid", err.Message)

	err = StatusIsKnown(&Context{Fields: map[string]any{}})
	require.NotNil(t, err)
	assert.Equal(t, "status: '' is not valid", err.Message)
}

func TestReservationIsUpdatable(t *testing.T) {
	for _, status := range []string{model.StatusBooked, model.StatusSeated} {
		vc := &Context{Reservation: &model.Reservation{Status: status}}
		assert.Nil(t, ReservationIsUpdatable(vc), "status %q", status)
	}
	for _, status := range []string{model.StatusFinished, model.StatusCancelled} {
		vc := &Context{Reservation: &model.Reservation{Status: status}}
		err := ReservationIsUpdatable(vc)
		require.NotNil(t, err, "status %q", status)
		assert.Equal(t, "'finished' status cannot be updated", err.Message)
	}
}

func TestReservationIsBooked(t *testing.T) {
	vc := &Context{Reservation: &model.Reservation{Status: model.StatusBooked}}
	assert.Nil(t, ReservationIsBooked(vc))

	vc.Reservation.Status = model.StatusSeated
	err := ReservationIsBooked(vc)
	require.NotNil(t, err)
	assert.Equal(t, "Reservation status seated is not valid", err.Message)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	fields := validReservationFields()
	delete(fields, "first_name")
	fields["reservation_time"] = "not-a-time"

	err := Run(&Context{Fields: fields, Now: time.Now()},
		HasOnlyReservationFields,
		HasRequiredReservationFields,
		TimeIsValid,
	)
	require.NotNil(t, err)
	assert.Equal(t, "A 'first_name' property is required.", err.Message)
}
