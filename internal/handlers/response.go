package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/Habit_Tracker/internal/validation"
	"github.com/sirupsen/logrus"
)

const (
	detailNotFound    = "Not found."
	detailInvalidPage = "Invalid page."
	detailServerError = "A server error occurred."
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeError maps validation failures to 400 {field: [message]} and anything
// else to a logged 500.
func writeError(w http.ResponseWriter, err error) {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		body := make(map[string][]string, len(verr.Fields))
		for field, msg := range verr.Fields {
			body[field] = []string{msg}
		}
		writeJSON(w, http.StatusBadRequest, body)
		return
	}
	logrus.WithError(err).Error("Request failed")
	writeDetail(w, http.StatusInternalServerError, detailServerError)
}

// decodeJSON reads the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logrus.WithError(err).Warn("Invalid request payload")
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return false
	}
	return true
}
