// Package apierr carries input errors from services to handlers and turns
// service errors into HTTP responses.
package apierr

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mariodiaz1375/consultorio-supabase/internal/platform/db"
)

// ValidationError maps field names to human-readable problems.
type ValidationError struct {
	Fields map[string]string
}

func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when no field was flagged, so callers can collect
// problems and return v.OrNil() unconditionally.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ToHTTP converts a service error into the HTTP error a handler returns.
// notFound is the message used for a missing entity. Anything unexpected
// becomes a generic 500 with the cause kept as the internal error, where the
// request logger picks it up.
func ToHTTP(err error, notFound string) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Fields).SetInternal(err)
	}

	switch {
	case errors.Is(err, db.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFound).SetInternal(err)
	case errors.Is(err, db.ErrReferenced):
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete: still referenced by other records").SetInternal(err)
	case errors.Is(err, db.ErrInvalidRef):
		return echo.NewHTTPError(http.StatusBadRequest, "referenced record does not exist").SetInternal(err)
	case errors.Is(err, db.ErrConflict):
		return echo.NewHTTPError(http.StatusBadRequest, "a record with the same values already exists").SetInternal(err)
	case errors.Is(err, db.ErrRestricted):
		return echo.NewHTTPError(http.StatusBadRequest, "operation not allowed").SetInternal(err)
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}
