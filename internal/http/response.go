package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kharcha/internal/core"
	"kharcha/internal/ledger"
	"kharcha/internal/log"
	"kharcha/internal/services"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// validationErrs are rejected with 400 rather than 422: the request
// itself is malformed, not merely unsatisfiable.
var validationErrs = []error{
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrInvalidDirection,
	core.ErrUnknownCategory,
	core.ErrMissingFundingSource,
	core.ErrInvalidOdometer,
	core.ErrInvalidFuelStatus,
	core.ErrEmptyCounterparty,
	core.ErrInvalidCapacity,
}

// writeServiceError maps domain and service failures to HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *core.InsufficientFundsError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error: "insufficient_funds",
			Detail: map[string]string{
				"source":    insufficient.Source,
				"available": insufficient.Available.String(),
			},
		})
		return
	}

	var regression *services.OdometerRegressionError
	if errors.As(err, &regression) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error: "odometer_regression",
			Detail: map[string]int64{
				"reading": regression.Reading,
				"current": regression.Current,
			},
		})
		return
	}

	var exceeds *services.RepaymentExceedsBalanceError
	if errors.As(err, &exceeds) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error: "repayment_exceeds_balance",
			Detail: map[string]string{
				"remaining": exceeds.Remaining.String(),
			},
		})
		return
	}

	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	for _, verr := range validationErrs {
		if errors.Is(err, verr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	s.logger.ErrorContext(r.Context(), "request failed",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldError, err,
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}
