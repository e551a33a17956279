package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
	"github.com/iliyamo/restaurant-table-reservation/internal/validation"
)

var createTableChain = []validation.Check{
	validation.HasOnlyTableFields,
	validation.HasRequiredTableFields,
	validation.TableNameIsValid,
	validation.CapacityIsPositiveInteger,
}

// PublishFunc emits a reservation lifecycle event to the broker.
type PublishFunc func(ctx context.Context, event queue.ReservationEvent) error

// TableHandler serves the /tables routes, including the combined
// seat and unseat operations that touch a table and its reservation
// together.
type TableHandler struct {
	Tables       *repository.TableRepo
	Reservations *repository.ReservationRepo
	Log          *zap.Logger
	Publish      PublishFunc
}

// NewTableHandler constructs a TableHandler publishing events through
// the RabbitMQ publisher.
func NewTableHandler(tables *repository.TableRepo, reservations *repository.ReservationRepo, log *zap.Logger) *TableHandler {
	if tables == nil || reservations == nil {
		panic("nil repository passed to NewTableHandler")
	}
	return &TableHandler{
		Tables:       tables,
		Reservations: reservations,
		Log:          log,
		Publish:      queue_publisher.PublishReservationEvent,
	}
}

// List handles GET /tables.
func (h *TableHandler) List(c echo.Context) error {
	data, err := h.Tables.List(c.Request().Context())
	if err != nil {
		h.Log.Error("list tables", zap.Error(err))
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": data})
}

// ListAvailable handles GET /tables/available, returning only
// unoccupied tables.
func (h *TableHandler) ListAvailable(c echo.Context) error {
	data, err := h.Tables.ListAvailable(c.Request().Context())
	if err != nil {
		h.Log.Error("list available tables", zap.Error(err))
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": data})
}

// Create handles POST /tables.
func (h *TableHandler) Create(c echo.Context) error {
	fields, verr := decodeData(c)
	if verr != nil {
		return fail(c, verr)
	}
	vc := &validation.Context{Fields: fields}
	if verr := validation.Run(vc, createTableChain...); verr != nil {
		return fail(c, verr)
	}

	t := model.Table{
		TableName: fieldString(fields, "table_name"),
	}
	if f, ok := fields["capacity"].(float64); ok {
		t.Capacity = uint32(f)
	}
	// Seeding a table together with its occupant is allowed; the
	// reservation_id field is optional on create.
	if id, ok := fieldID(fields, "reservation_id"); ok {
		t.ReservationID = &id
	}
	if err := h.Tables.Create(c.Request().Context(), &t); err != nil {
		h.Log.Error("create table", zap.Error(err))
		return internalError(c)
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": t})
}

// Seat handles PUT /tables/:table_id/seat.  The chain: the body names
// an existing booked reservation, the table exists, has the capacity
// for the whole party, and is currently free.  Then both rows update
// in one transaction and the reservation becomes seated.
func (h *TableHandler) Seat(c echo.Context) error {
	fields, verr := decodeData(c)
	if verr != nil {
		return fail(c, verr)
	}
	vc := &validation.Context{Fields: fields}
	if verr := validation.Run(vc, validation.HasReservationID); verr != nil {
		return fail(c, verr)
	}

	ctx := c.Request().Context()
	resID, ok := fieldID(fields, "reservation_id")
	if !ok {
		return fail(c, validation.NotFound("Reservation %v does not exist", fields["reservation_id"]))
	}
	reservation, err := h.Reservations.GetByID(ctx, resID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return fail(c, validation.NotFound("Reservation %d does not exist", resID))
		}
		h.Log.Error("read reservation for seating", zap.Error(err), zap.Uint64("reservation_id", resID))
		return internalError(c)
	}
	vc.Reservation = reservation
	if verr := validation.Run(vc, validation.ReservationIsBooked); verr != nil {
		return fail(c, verr)
	}

	table, verr := h.loadTable(c)
	if verr != nil {
		return fail(c, verr)
	}
	vc.Table = table
	if verr := validation.Run(vc, validation.TableHasCapacity, validation.TableIsFree); verr != nil {
		return fail(c, verr)
	}

	updated, err := h.Tables.Seat(ctx, table.ID, reservation.ID)
	if err != nil {
		return h.seatError(c, err, "seat reservation")
	}

	h.publish(ctx, queue.EventSeated, reservation, updated)
	return c.JSON(http.StatusOK, echo.Map{"data": updated})
}

// Unseat handles DELETE /tables/:table_id/seat.  The occupied table is
// freed and its reservation closed out as finished, atomically.
func (h *TableHandler) Unseat(c echo.Context) error {
	table, verr := h.loadTable(c)
	if verr != nil {
		return fail(c, verr)
	}
	vc := &validation.Context{Table: table}
	if verr := validation.Run(vc, validation.TableIsOccupied); verr != nil {
		return fail(c, verr)
	}

	ctx := c.Request().Context()
	reservation, err := h.Reservations.GetByID(ctx, *table.ReservationID)
	if err != nil {
		// Dangling link: the table points at a reservation that no
		// longer exists.
		if errors.Is(err, repository.ErrReservationNotFound) {
			return fail(c, validation.NotFound("Reservation %d cannot be found.", *table.ReservationID))
		}
		h.Log.Error("read reservation for unseating", zap.Error(err), zap.Uint64("reservation_id", *table.ReservationID))
		return internalError(c)
	}

	updated, err := h.Tables.Finish(ctx, table.ID, reservation.ID)
	if err != nil {
		return h.seatError(c, err, "finish reservation")
	}

	h.publish(ctx, queue.EventFinished, reservation, updated)
	return c.JSON(http.StatusOK, echo.Map{"data": updated})
}

// loadTable resolves the :table_id path parameter to a table, mapping
// malformed ids and missing rows to the same 404.
func (h *TableHandler) loadTable(c echo.Context) (*model.Table, *validation.Error) {
	raw := c.Param("table_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, validation.NotFound("Table %s does not exist.", raw)
	}
	t, err := h.Tables.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrTableNotFound) {
			return nil, validation.NotFound("Table %s does not exist.", raw)
		}
		h.Log.Error("read table", zap.Error(err), zap.Uint64("table_id", id))
		return nil, &validation.Error{Status: http.StatusInternalServerError, Message: "internal server error"}
	}
	return t, nil
}

// seatError maps the transactional sentinels to the same responses the
// pre-checks produce, so a race lost inside the transaction looks no
// different to the client than one caught before it.
func (h *TableHandler) seatError(c echo.Context, err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrTableOccupied):
		return fail(c, validation.BadRequest("This table is occupied."))
	case errors.Is(err, repository.ErrTableNotOccupied):
		return fail(c, validation.BadRequest("This table is not occupied."))
	case errors.Is(err, repository.ErrTableNotFound):
		return fail(c, validation.NotFound("Table %s does not exist.", c.Param("table_id")))
	default:
		h.Log.Error(op, zap.Error(err))
		return internalError(c)
	}
}

// publish emits a lifecycle event after a committed seat or unseat.
// Best effort: failures are logged and never affect the response.
func (h *TableHandler) publish(ctx context.Context, eventType string, res *model.Reservation, t *model.Table) {
	event := queue.ReservationEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		ReservationID: res.ID,
		TableID:       t.ID,
		TableName:     t.TableName,
		People:        res.People,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Publish(ctx, event); err != nil {
		h.Log.Warn("publish reservation event", zap.Error(err), zap.String("type", eventType))
	}
}
