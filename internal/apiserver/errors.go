package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chrissnell/solarengine/internal/errs"
)

// writeAnalysisError maps the orchestrator's sentinel error kinds to
// HTTP status codes, per §7.
func writeAnalysisError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrProviderUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, errs.ErrNumericDegenerate):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrCancelled):
		status = http.StatusRequestTimeout
	case errors.Is(err, errs.ErrInternalInvariantViolated):
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
