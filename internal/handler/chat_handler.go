package handlers

import (
	"encoding/json"
	"net/http"
	"ssocieyt/internal/service"

	"github.com/gorilla/mux"
)

func (h *Handlers) StartChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	var req struct {
		UserID string `json:"userId" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	chat, err := h.ChatService.StartChat(r.Context(), currentUser, req.UserID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, chat, http.StatusOK)
}

func (h *Handlers) GetChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	chats, err := h.ChatService.GetUserChats(r.Context(), currentUser)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{"chats": chats}, http.StatusOK)
}

func (h *Handlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	messages, err := h.ChatService.GetMessages(r.Context(), mux.Vars(r)["id"], currentUser)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{"messages": messages}, http.StatusOK)
}

func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	var req struct {
		Text         *string `json:"text"`
		CodeSnippet  *string `json:"codeSnippet"`
		CodeLanguage *string `json:"codeLanguage"`
		ImageURL     *string `json:"imageUrl"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	message, err := h.ChatService.SendMessage(r.Context(), service.SendMessageRequest{
		ChatID:       mux.Vars(r)["id"],
		SenderID:     currentUser,
		Text:         req.Text,
		CodeSnippet:  req.CodeSnippet,
		CodeLanguage: req.CodeLanguage,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, message, http.StatusCreated)
}

func (h *Handlers) MarkChatRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.ChatService.MarkRead(r.Context(), mux.Vars(r)["id"], currentUser); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Чат прочитан"}, http.StatusOK)
}

// UploadMessageImage грузит картинку для сообщения и возвращает URL,
// который клиент затем шлет в SendMessage
func (h *Handlers) UploadMessageImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	file, fileHeader, err := h.readImageUpload(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	imageURL, err := h.ChatService.UploadMessageImage(r.Context(), mux.Vars(r)["id"], currentUser,
		fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"imageUrl": imageURL}, http.StatusCreated)
}
