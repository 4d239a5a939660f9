package handlers

import (
	"encoding/json"
	"net/http"
	"ssocieyt/internal/models"
	"ssocieyt/internal/repository"
	"ssocieyt/internal/service"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

type FeedResponse struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// CreatePost принимает multipart-форму: content, codeSnippet, codeLanguage,
// gameTag и опциональный файл image
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	serviceReq := service.CreatePostRequest{
		AuthorID: currentUser,
		Content:  r.FormValue("content"),
		GameTag:  r.FormValue("gameTag"),
	}

	if code := r.FormValue("codeSnippet"); code != "" {
		serviceReq.CodeSnippet = &code
		language := r.FormValue("codeLanguage")
		if language == "" {
			language = "plaintext"
		}
		serviceReq.CodeLanguage = &language
	}

	// optional image
	if file, fileHeader, err := r.FormFile("image"); err == nil {
		defer file.Close()

		contentType := fileHeader.Header.Get("Content-Type")
		if !allowedImageTypes[contentType] {
			WriteError(w, "Неподдерживаемый тип файла. Разрешены: JPEG, PNG, GIF, WebP", http.StatusBadRequest)
			return
		}

		serviceReq.ImageName = fileHeader.Filename
		serviceReq.Image = file
		serviceReq.ImageSize = fileHeader.Size
	}

	post, err := h.PostService.CreatePost(r.Context(), serviceReq)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusCreated)
}

func (h *Handlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// keyset-курсор: cursorTime + cursorId из предыдущей страницы
	var cursor *repository.FeedCursor
	if cursorTime := r.URL.Query().Get("cursorTime"); cursorTime != "" {
		parsedTime, err := time.Parse(time.RFC3339Nano, cursorTime)
		if err != nil {
			WriteError(w, "Неверный формат курсора", http.StatusBadRequest)
			return
		}
		cursor = &repository.FeedCursor{
			CreatedAt: parsedTime,
			PostID:    r.URL.Query().Get("cursorId"),
		}
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, err := h.PostService.GetFeed(r.Context(), cursor, limit)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	response := FeedResponse{Posts: posts}
	if len(posts) > 0 {
		last := posts[len(posts)-1]
		response.NextCursor = last.CreatedAt.Format(time.RFC3339Nano) + "|" + last.PostID
	}

	WriteSuccess(w, response, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	post, err := h.PostService.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.PostService.DeletePost(r.Context(), mux.Vars(r)["id"], currentUser); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Пост удален"}, http.StatusOK)
}

func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.PostService.LikePost(r.Context(), mux.Vars(r)["id"], currentUser); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Лайк поставлен"}, http.StatusOK)
}

func (h *Handlers) UnlikePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.PostService.UnlikePost(r.Context(), mux.Vars(r)["id"], currentUser); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Лайк снят"}, http.StatusOK)
}

func (h *Handlers) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	posts, err := h.PostService.GetAuthorPosts(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{"posts": posts}, http.StatusOK)
}

func (h *Handlers) GetLikedPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	posts, err := h.PostService.GetLikedPosts(r.Context(), currentUser)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{"posts": posts}, http.StatusOK)
}

func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	comments, err := h.PostService.GetComments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{"comments": comments}, http.StatusOK)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
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
		Content string `json:"content" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	comment, err := h.PostService.AddComment(r.Context(), service.AddCommentRequest{
		PostID:   mux.Vars(r)["id"],
		AuthorID: currentUser,
		Content:  req.Content,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, comment, http.StatusCreated)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	currentUser, ok := currentUserID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.PostService.DeleteComment(r.Context(), mux.Vars(r)["commentId"], currentUser); err != nil {
		WriteAppError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Комментарий удален"}, http.StatusOK)
}
