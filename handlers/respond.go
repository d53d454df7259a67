package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/CrowderSoup/taskboard/board"
)

type errorBody struct {
	Status  string          `json:"status"`
	Code    board.ErrorCode `json:"code,omitempty"`
	Message string          `json:"message"`
	Action  *int            `json:"action,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("write response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, data any) {
	body := map[string]any{"status": "success"}
	if data != nil {
		body["data"] = data
	}
	writeJSON(w, http.StatusOK, body)
}

func writeStatusError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Status: "error", Message: message})
}

// writeMutationError renders err with the status that matches its code.
// Errors that are not a *board.MutationError are reported as store failures.
func writeMutationError(w http.ResponseWriter, err error) {
	var me *board.MutationError
	if !errors.As(err, &me) {
		me = board.Fail(board.CodeStore, err)
	}
	body := errorBody{Status: "error", Code: me.Code, Message: me.Message}
	if me.Action >= 0 {
		pos := me.Action
		body.Action = &pos
	}
	writeJSON(w, StatusFor(me.Code), body)
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code board.ErrorCode) int {
	switch code {
	case board.CodeUnauthorized:
		return http.StatusForbidden
	case board.CodeValidation:
		return http.StatusBadRequest
	case board.CodeInvariant:
		return http.StatusConflict
	case board.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
