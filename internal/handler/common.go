// Package handler contains the HTTP handlers for the reservation and
// table resources.  Handlers decode the {"data": {...}} request
// envelope, run the validation chains, resolve referenced entities
// through the repositories, and shape every response as {"data": ...}
// or {"error": message}.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/validation"
)

// dataEnvelope is the request body wrapper used by every mutating
// route.  Fields decode into map[string]any so the validation chains
// can see exactly which keys the client sent.
type dataEnvelope struct {
	Data map[string]any `json:"data"`
}

// decodeData unwraps the request envelope.  A missing or null data
// object decodes to an empty map so the required-field checks report
// the first missing field instead of a generic parse error.
func decodeData(c echo.Context) (map[string]any, *validation.Error) {
	var body dataEnvelope
	if err := c.Bind(&body); err != nil {
		return nil, validation.BadRequest("request body is not valid JSON")
	}
	if body.Data == nil {
		body.Data = map[string]any{}
	}
	return body.Data, nil
}

// fail writes a validation error as its HTTP status plus the shared
// {"error": message} body.
func fail(c echo.Context, verr *validation.Error) error {
	return c.JSON(verr.Status, echo.Map{"error": verr.Message})
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

// fieldString returns the named field when present as a string.
func fieldString(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// fieldID returns the named field as an entity id when it is a whole
// positive JSON number.
func fieldID(fields map[string]any, key string) (uint64, bool) {
	f, ok := fields[key].(float64)
	if !ok || f <= 0 || f != float64(uint64(f)) {
		return 0, false
	}
	return uint64(f), true
}
