// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
)

// RespondError maps ledger errors to HTTP responses using RFC7807. Every
// rejection names the violated invariant in plain terms.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrUnbalanced),
		errors.Is(err, shared.ErrTooFewLines),
		errors.Is(err, shared.ErrZeroAmount),
		errors.Is(err, shared.ErrInvalidAccount):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrImmutable),
		errors.Is(err, shared.ErrAlreadyReversed),
		errors.Is(err, shared.ErrInvalidStatus),
		errors.Is(err, shared.ErrPeriodClosed),
		errors.Is(err, shared.ErrPeriodHasDrafts),
		errors.Is(err, shared.ErrSourceAlreadyPosted):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
