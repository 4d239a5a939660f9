package handlers

import (
	"net/http"
)

func (h *Handlers) GetNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	notifications, err := h.NotificationService.GetNotifications(r.Context(), currentUser)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{"notifications": notifications}, http.StatusOK)
}

func (h *Handlers) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.NotificationService.MarkAllRead(r.Context(), currentUser); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Уведомления прочитаны"}, http.StatusOK)
}
