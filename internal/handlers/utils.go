package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

var errInvalidPlayerName = errors.New("invalid player name")

// validatePlayerName trims the name and checks it is 1..maxLen runes long.
func validatePlayerName(raw string, maxLen int) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || len([]rune(name)) > maxLen {
		return "", errInvalidPlayerName
	}
	return name, nil
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}
