package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped to a user message, web errors first, then core.MapError
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON for API clients, as an alert otherwise

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/mrovalidate/internal/core"
	"github.com/JonMunkholm/mrovalidate/internal/logging"
	"github.com/JonMunkholm/mrovalidate/internal/store"
	"github.com/JonMunkholm/mrovalidate/internal/web/templates"
)

var (
	errHistoryDisabled = errors.New("run history is not configured")
	errNoReport        = errors.New("no validation report available")
	errRunInProgress   = errors.New("validation already running")
	errBadRunID        = errors.New("invalid run ID")
	errBadFormat       = errors.New("unknown report format")
)

// webMessages covers errors raised by the web layer itself (WEB001-WEB099).
var webMessages = []struct {
	target error
	msg    core.UserMessage
}{
	{errHistoryDisabled, core.UserMessage{Message: "Run history is not configured", Action: "Set DATABASE_URL to keep run history", Code: "WEB001"}},
	{errNoReport, core.UserMessage{Message: "No validation has run yet", Action: "POST /api/validate first", Code: "WEB002"}},
	{errRunInProgress, core.UserMessage{Message: "A validation is already running", Action: "Wait for it to finish and retry", Code: "WEB003"}},
	{errBadRunID, core.UserMessage{Message: "The run ID is not a valid UUID", Action: "Use an ID from /api/runs", Code: "WEB004"}},
	{errBadFormat, core.UserMessage{Message: "Unknown report format", Action: "Use format=tsv, json or yaml", Code: "WEB005"}},
	{store.ErrRunNotFound, core.UserMessage{Message: "Run not found", Action: "Use an ID from /api/runs", Code: "WEB006"}},
}

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func mapError(err error) core.UserMessage {
	for _, m := range webMessages {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}
	return core.MapError(err)
}

// statusFor picks the HTTP status of a validation fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrTableNotFound),
		errors.Is(err, core.ErrMalformedTable),
		errors.Is(err, core.ErrMissingColumn):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error server-side and returns a
// user-friendly response in the format the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := mapError(err)

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, statusCode)
		return
	}
	respondErrorHTML(w, r, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders the error alert fragment.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error alert", "error", err)
	}
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
