package render

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnknownRenderer is returned when a block carries a renderer tag that no
// registered strategy handles. Usually a sign of data-model drift, a new
// renderer written to the table before being registered here.
var ErrUnknownRenderer = errors.New("unknown renderer")

// DataError reports a block whose data payload failed its renderer's
// validation. Status carries the HTTP-equivalent class: 404 when required
// content is missing, 400 when the shape is malformed. The public resolution
// path collapses both to a not-found outcome.
type DataError struct {
	Renderer string
	Status   int
	Reason   string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: %s", e.Renderer, e.Reason)
}

func missingErr(renderer, reason string) *DataError {
	return &DataError{Renderer: renderer, Status: http.StatusNotFound, Reason: reason}
}

func malformedErr(renderer, reason string) *DataError {
	return &DataError{Renderer: renderer, Status: http.StatusBadRequest, Reason: reason}
}
