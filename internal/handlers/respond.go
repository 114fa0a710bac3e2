package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/service"
)

// StatusFor возвращает HTTP-код для ошибки сервиса.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateAlias):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return "Alias and url required"
	case errors.Is(err, service.ErrDuplicateAlias):
		return "Alias already exists"
	case errors.Is(err, service.ErrNotFound):
		return "Alias not found"
	case errors.Is(err, service.ErrStorageUnavailable):
		return "Storage unavailable"
	}
	return "Internal server error"
}

func (h *Handler) writeError(res http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", zap.Error(err))
	}
	h.writeJSON(res, status, model.ErrorResponse{Error: messageFor(err)})
}

func (h *Handler) writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		h.Logger.Error("Failed to encode response", zap.Error(err))
	}
}

// decode читает JSON-тело. При ошибке сам пишет ответ и возвращает false.
func (h *Handler) decode(res http.ResponseWriter, req *http.Request, v any) bool {
	err := json.NewDecoder(req.Body).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.writeJSON(res, http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: "Request body too large"})
		return false
	}
	h.writeJSON(res, http.StatusBadRequest, model.ErrorResponse{Error: "Invalid JSON"})
	return false
}
