package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// The storefront clients consume a flat envelope: a human-readable
// message plus the numeric status repeated in the body. Data, when
// present, rides under "data".

type envelope struct {
	Message         string      `json:"message"`
	Status          int         `json:"status"`
	Data            interface{} `json:"data,omitempty"`
	CaptchaRequired bool        `json:"captcha_required,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, envelope{Message: message, Status: statusCode})
}

func writeMessageWithData(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, envelope{Message: message, Status: statusCode, Data: data})
}

// writeLoginFailure mirrors the legacy contract: any failure whose
// message mentions a captcha also carries captcha_required so the
// client knows to render the widget.
func writeLoginFailure(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, envelope{
		Message:         message,
		Status:          http.StatusBadRequest,
		CaptchaRequired: strings.Contains(strings.ToLower(message), "captcha"),
	})
}
