// Package validation implements the fail-fast check pipelines that
// guard every mutating route.  A chain is a plain slice of Check
// functions applied in order by Run; the first failing check aborts
// the chain with a typed Error carrying the HTTP status and message.
//
// Checks are pure: they read the decoded request fields and any
// entities the handler has already loaded from the Context, and never
// touch the database themselves.  Existence lookups happen in the
// handlers between pipeline segments, which keeps the original chain
// order while avoiding hidden per-request state.
package validation

import (
	"fmt"
	"net/http"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Error is a validation failure: an HTTP status plus a message naming
// the offending field or rule.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// BadRequest builds a 400 Error with a formatted message.
func BadRequest(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a 404 Error with a formatted message.
func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// Context carries everything a chain may look at: the raw request
// fields (the object under the "data" wrapper, as decoded by
// encoding/json), the instant "now" is measured against, and the
// entities resolved so far.
type Context struct {
	Fields      map[string]any
	Now         time.Time
	Reservation *model.Reservation
	Table       *model.Table
}

// Check inspects the context and reports a failure or nil.
type Check func(*Context) *Error

// Run applies checks in order and returns the first failure, if any.
func Run(vc *Context, checks ...Check) *Error {
	for _, check := range checks {
		if err := check(vc); err != nil {
			return err
		}
	}
	return nil
}

// str returns the named field when it is present and a string.
func (vc *Context) str(key string) (string, bool) {
	v, ok := vc.Fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// truthy mirrors the presence rules of the original API: absent, null,
// empty string, zero and false all count as missing.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	}
	return true
}

// unknownFields collects request fields outside the allowed set, in a
// stable order for deterministic messages.
func unknownFields(fields map[string]any, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowedSet[f] = struct{}{}
	}
	var invalid []string
	for key := range fields {
		if _, ok := allowedSet[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	sortStrings(invalid)
	return invalid
}

// firstMissing returns the first required field that is absent or
// empty, in declaration order.
func firstMissing(fields map[string]any, required []string) (string, bool) {
	for _, f := range required {
		if !truthy(fields[f]) {
			return f, true
		}
	}
	return "", false
}

// sortStrings is a tiny insertion sort; field lists never exceed a
// handful of entries.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
