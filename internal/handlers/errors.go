// internal/handlers/errors.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/rams/internal/auth"
	"github.com/jason-s-yu/rams/internal/game"
	"github.com/jason-s-yu/rams/internal/rules"
)

// errUnauthorized marks a missing or rejected seat token.
var errUnauthorized = errors.New("seat token required")

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case rules.IsValidation(err):
		return http.StatusBadRequest
	case rules.IsRuleViolation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, errUnauthorized), errors.Is(err, auth.ErrWrongSeat):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends {"message": ...}. Server errors are logged and only corrupt-state messages are
// passed through to the client.
func writeError(w http.ResponseWriter, logger logrus.FieldLogger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
		if !errors.Is(err, game.ErrCorruptState) {
			msg = "internal server error"
		}
	}
	writeJSON(w, status, map[string]string{"message": msg})
}
