package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rl1809/webshop/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case domain.IsNotFound(err):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrCategoryNotEmpty),
		errors.Is(err, domain.ErrItemNotInCart),
		errors.Is(err, domain.ErrDuplicateRequest):
		status = http.StatusConflict
		message = err.Error()
	default:
		slog.Error("request failed", "error", err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}
