package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/validation"
)

// createReservationChain guards POST /reservations.  Order matters:
// the first failing check produces the response.
var createReservationChain = []validation.Check{
	validation.HasOnlyReservationFields,
	validation.HasRequiredReservationFields,
	validation.TimeIsValid,
	validation.TimeIsDuringOpenHours,
	validation.DateIsValid,
	validation.DayIsNotTuesday,
	validation.DateIsInFuture,
	validation.StatusIsBooked,
	validation.PeopleIsPositiveInteger,
}

// updateReservationChain guards PUT /reservations/:reservation_id.
// Unlike create it tolerates any non-terminal status so a client can
// echo back a record it previously read.
var updateReservationChain = []validation.Check{
	validation.HasOnlyReservationFields,
	validation.HasRequiredReservationFields,
	validation.TimeIsValid,
	validation.TimeIsDuringOpenHours,
	validation.DateIsValid,
	validation.DayIsNotTuesday,
	validation.DateIsInFuture,
	validation.StatusIsNotFinished,
	validation.PeopleIsPositiveInteger,
}

// ReservationHandler serves the /reservations routes.
type ReservationHandler struct {
	Reservations *repository.ReservationRepo
	Log          *zap.Logger
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(reservations *repository.ReservationRepo, log *zap.Logger) *ReservationHandler {
	if reservations == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, Log: log}
}

// List handles GET /reservations.  A mobile_number query searches by
// phone digits and takes precedence over date; otherwise the listing
// is scoped to the given date, defaulting to today.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if mobile := c.QueryParam("mobile_number"); mobile != "" {
		data, err := h.Reservations.SearchByMobile(ctx, mobile)
		if err != nil {
			h.Log.Error("search reservations by mobile", zap.Error(err))
			return internalError(c)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": data})
	}

	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	data, err := h.Reservations.ListByDate(ctx, date)
	if err != nil {
		h.Log.Error("list reservations by date", zap.Error(err))
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": data})
}

// Create handles POST /reservations.  The full validation chain runs
// before any database write; a new reservation always starts booked.
func (h *ReservationHandler) Create(c echo.Context) error {
	fields, verr := decodeData(c)
	if verr != nil {
		return fail(c, verr)
	}
	vc := &validation.Context{Fields: fields, Now: time.Now()}
	if verr := validation.Run(vc, createReservationChain...); verr != nil {
		return fail(c, verr)
	}

	res := reservationFromFields(fields)
	if err := h.Reservations.Create(c.Request().Context(), &res); err != nil {
		h.Log.Error("create reservation", zap.Error(err))
		return internalError(c)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": res})
}

// Read handles GET /reservations/:reservation_id.
func (h *ReservationHandler) Read(c echo.Context) error {
	res, verr := h.loadReservation(c)
	if verr != nil {
		return fail(c, verr)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": res})
}

// Update handles PUT /reservations/:reservation_id.  The chain runs
// first, then the target is loaded (404 when absent) and the provided
// fields are overlaid onto the stored record.
func (h *ReservationHandler) Update(c echo.Context) error {
	fields, verr := decodeData(c)
	if verr != nil {
		return fail(c, verr)
	}
	vc := &validation.Context{Fields: fields, Now: time.Now()}
	if verr := validation.Run(vc, updateReservationChain...); verr != nil {
		return fail(c, verr)
	}

	existing, verr := h.loadReservation(c)
	if verr != nil {
		return fail(c, verr)
	}

	updated := *existing
	applyReservationFields(&updated, fields)
	if err := h.Reservations.Update(c.Request().Context(), &updated); err != nil {
		h.Log.Error("update reservation", zap.Error(err), zap.Uint64("reservation_id", updated.ID))
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": updated})
}

// UpdateStatus handles PUT /reservations/:reservation_id/status.  It
// changes nothing but the status, and only while the reservation is
// still booked or seated.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	existing, verr := h.loadReservation(c)
	if verr != nil {
		return fail(c, verr)
	}
	fields, verr := decodeData(c)
	if verr != nil {
		return fail(c, verr)
	}

	vc := &validation.Context{Fields: fields, Reservation: existing}
	if verr := validation.Run(vc, validation.StatusIsKnown, validation.ReservationIsUpdatable); verr != nil {
		return fail(c, verr)
	}

	updated := *existing
	updated.Status = fieldString(fields, "status")
	if err := h.Reservations.Update(c.Request().Context(), &updated); err != nil {
		h.Log.Error("update reservation status", zap.Error(err), zap.Uint64("reservation_id", updated.ID))
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": updated})
}

// loadReservation resolves the :reservation_id path parameter.  Both a
// malformed id and a missing row surface as the same 404, echoing the
// raw parameter in the message.
func (h *ReservationHandler) loadReservation(c echo.Context) (*model.Reservation, *validation.Error) {
	raw := c.Param("reservation_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, validation.NotFound("Reservation %s does not exist", raw)
	}
	res, err := h.Reservations.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, validation.NotFound("Reservation %s does not exist", raw)
		}
		h.Log.Error("read reservation", zap.Error(err), zap.Uint64("reservation_id", id))
		return nil, &validation.Error{Status: http.StatusInternalServerError, Message: "internal server error"}
	}
	return res, nil
}

// reservationFromFields builds a new reservation from a validated
// create body.  Status defaults to booked when absent.
func reservationFromFields(fields map[string]any) model.Reservation {
	res := model.Reservation{
		FirstName:       fieldString(fields, "first_name"),
		LastName:        fieldString(fields, "last_name"),
		MobileNumber:    fieldString(fields, "mobile_number"),
		ReservationDate: fieldString(fields, "reservation_date"),
		ReservationTime: normalizeTime(fieldString(fields, "reservation_time")),
		Status:          model.StatusBooked,
	}
	if s := fieldString(fields, "status"); s != "" {
		res.Status = s
	}
	if f, ok := fields["people"].(float64); ok {
		res.People = uint32(f)
	}
	return res
}

// applyReservationFields overlays the provided fields onto an existing
// record; absent fields keep their stored values.
func applyReservationFields(res *model.Reservation, fields map[string]any) {
	if _, ok := fields["first_name"]; ok {
		res.FirstName = fieldString(fields, "first_name")
	}
	if _, ok := fields["last_name"]; ok {
		res.LastName = fieldString(fields, "last_name")
	}
	if _, ok := fields["mobile_number"]; ok {
		res.MobileNumber = fieldString(fields, "mobile_number")
	}
	if _, ok := fields["reservation_date"]; ok {
		res.ReservationDate = fieldString(fields, "reservation_date")
	}
	if _, ok := fields["reservation_time"]; ok {
		res.ReservationTime = normalizeTime(fieldString(fields, "reservation_time"))
	}
	if f, ok := fields["people"].(float64); ok {
		res.People = uint32(f)
	}
	if s := fieldString(fields, "status"); s != "" {
		res.Status = s
	}
}

// normalizeTime widens HH:MM to the HH:MM:SS form the TIME column
// round-trips as.
func normalizeTime(t string) string {
	if len(t) == 5 {
		return t + ":00"
	}
	return t
}
