package utils

import (
	"encoding/json"
	"net/http"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/sirupsen/logrus"
)

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	RespondWithError(w, errors.New(statusCode, "HandleError", nil, message))
}

// RespondWithError writes err as {"error": message}. Errors that are not an
// AppError are reported as 500 without leaking their text.
func RespondWithError(w http.ResponseWriter, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal("RespondWithError", err, "Internal server error")
	}

	logrus.WithFields(logrus.Fields{
		"status_code": appErr.Code,
		"op":          appErr.Op,
		"error":       appErr.Error(),
	}).Error("Request failed")

	writeJSON(w, appErr.Code, map[string]string{"error": appErr.Message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	writeJSON(w, code, payload)
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
		code = http.StatusInternalServerError
		body = []byte(`{"error":"Failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(body, '\n'))
}
