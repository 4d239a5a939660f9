package handlers

import (
	"encoding/json"
	"net/http"
	"ssocieyt/internal/models"
	"ssocieyt/internal/repository"

	"github.com/gorilla/mux"
)

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := mux.Vars(r)["id"]

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetProfile(r.Context(), userID, currentUser)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, user, http.StatusOK)
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetProfile(r.Context(), currentUser, currentUser)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, user, http.StatusOK)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := mux.Vars(r)["id"]

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if userID != currentUser {
		WriteError(w, "Нет прав для обновления этого профиля", http.StatusForbidden)
		return
	}

	var req struct {
		DisplayName *string            `json:"displayName"`
		Bio         *string            `json:"bio"`
		IsPrivate   *bool              `json:"isPrivate"`
		GameHandles models.GameHandles `json:"gameHandles"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	serviceReq := repository.UpdateProfileRequest{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		IsPrivate:   req.IsPrivate,
		GameHandles: req.GameHandles,
	}

	if err := h.UserService.UpdateProfile(r.Context(), serviceReq); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Профиль обновлен"}, http.StatusOK)
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := mux.Vars(r)["id"]

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if userID != currentUser {
		WriteError(w, "Нет прав для обновления этого профиля", http.StatusForbidden)
		return
	}

	file, fileHeader, err := h.readImageUpload(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	photoURL, err := h.UserService.UploadAvatar(r.Context(), userID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"photoUrl": photoURL}, http.StatusCreated)
}

func (h *Handlers) Follow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	followeeID := mux.Vars(r)["id"]

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.UserService.Follow(r.Context(), currentUser, followeeID); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Подписка оформлена"}, http.StatusOK)
}

func (h *Handlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	followeeID := mux.Vars(r)["id"]

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.UserService.Unfollow(r.Context(), currentUser, followeeID); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Подписка отменена"}, http.StatusOK)
}

func (h *Handlers) SearchUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	users, err := h.UserService.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{"users": users}, http.StatusOK)
}

func (h *Handlers) CheckUsername(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	username := r.URL.Query().Get("username")
	if !usernamePattern.MatchString(username) {
		WriteError(w, "Username: 3-30 символов, только буквы, цифры и _", http.StatusBadRequest)
		return
	}

	available, err := h.UserService.CheckUsernameAvailability(r.Context(), username)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]bool{"available": available}, http.StatusOK)
}
