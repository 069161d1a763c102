package httptransport

import (
	"errors"
	"net/http"

	"pulse-ledger/internal/ledger"

	"github.com/rs/zerolog/log"
)

var statusByKind = map[string]int{
	ledger.ErrInvalidInput.Error():              http.StatusBadRequest,
	ledger.ErrInvalidFeeBps.Error():             http.StatusBadRequest,
	ledger.ErrInvalidPrice.Error():              http.StatusBadRequest,
	ledger.ErrInvalidSupply.Error():             http.StatusBadRequest,
	ledger.ErrInvalidBudget.Error():             http.StatusBadRequest,
	ledger.ErrMathOverflow.Error():              http.StatusBadRequest,
	ledger.ErrMathUnderflow.Error():             http.StatusBadRequest,
	ledger.ErrUnauthorized.Error():              http.StatusForbidden,
	ledger.ErrNotFound.Error():                  http.StatusNotFound,
	ledger.ErrAlreadyExists.Error():             http.StatusConflict,
	ledger.ErrConflict.Error():                  http.StatusConflict,
	ledger.ErrTierSoldOut.Error():               http.StatusConflict,
	ledger.ErrAgentInactive.Error():             http.StatusUnprocessableEntity,
	ledger.ErrEventNotActive.Error():            http.StatusUnprocessableEntity,
	ledger.ErrTierNotActive.Error():             http.StatusUnprocessableEntity,
	ledger.ErrAutoPurchaseDisabled.Error():      http.StatusUnprocessableEntity,
	ledger.ErrInsufficientAgentBudget.Error():   http.StatusUnprocessableEntity,
	ledger.ErrInsufficientEscrowBalance.Error(): http.StatusUnprocessableEntity,
	ledger.ErrTicketLimitReached.Error():        http.StatusUnprocessableEntity,
}

// statusFor maps a service error to an HTTP status and the error code sent
// to the client. Unknown errors are reported as internal_error.
func statusFor(err error) (int, string) {
	kind := ledger.Kind(err)
	if status, ok := statusByKind[kind]; ok {
		return status, kind
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		WriteHTTPError(w, http.StatusServiceUnavailable, "request_canceled")
		return
	}
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request_failed")
	}
	WriteHTTPError(w, status, code)
}
