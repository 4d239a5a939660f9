package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"ssocieyt/internal/apperror"
)

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError - универсальная функция для отправки ошибок
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// WriteSuccess - функция для успешных ответов
func WriteSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteAppError мапит класс ошибки на HTTP-статус
func WriteAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		WriteError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, apperror.ErrValidation):
		WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperror.ErrConflict):
		WriteError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, apperror.ErrForbidden):
		WriteError(w, err.Error(), http.StatusForbidden)
	default:
		WriteError(w, err.Error(), http.StatusInternalServerError)
	}
}
