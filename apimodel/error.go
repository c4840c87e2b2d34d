package apimodel

import (
	"encoding/json"
	"github.com/sirupsen/logrus"
	"net/http"
	"strconv"
)

type ErrorMessage struct {
	ErrStatusCode int    `json:"status_code"`
	ErrMessage    string `json:"message"`
}

var defaultMessages = map[int]string{
	http.StatusOK:                 "Ok",
	http.StatusNotFound:           "Page not found",
	http.StatusMethodNotAllowed:   "Method not allowed",
	http.StatusForbidden:          "Forbidden",
	http.StatusServiceUnavailable: "Service unavailable",
	http.StatusBadRequest:         "Bad request",
}

// NewErrorMessage builds a message, falling back to a generic text for the
// status when message is empty.
func NewErrorMessage(status int, message string) *ErrorMessage {
	if message == "" {
		var ok bool
		if message, ok = defaultMessages[status]; !ok {
			message = "Internal error"
		}
	}
	return &ErrorMessage{ErrStatusCode: status, ErrMessage: message}
}

func (e *ErrorMessage) Error() string {
	if e.ErrMessage == "" {
		return strconv.Itoa(e.ErrStatusCode)
	}
	return strconv.Itoa(e.ErrStatusCode) + ":" + e.ErrMessage
}

func (e *ErrorMessage) Send(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.ErrStatusCode)
	if err := json.NewEncoder(w).Encode(e); err != nil {
		logrus.Warnf("Unable to encode error message: %v", err)
	}
}
