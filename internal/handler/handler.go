package handlers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"ssocieyt/internal/config"
	"ssocieyt/internal/database"
	"ssocieyt/internal/service"
	"ssocieyt/internal/ws"

	"github.com/go-playground/validator/v10"
)

type Handlers struct {
	AuthService         service.AuthService
	UserService         service.UserService
	PostService         service.PostService
	ChatService         service.ChatService
	NotificationService service.NotificationService
	Hub                 *ws.Hub
	DB                  *database.DB
	Cfg                 *config.Config
	Validate            *validator.Validate
}

func NewHandlers(services *service.Service, hub *ws.Hub, db *database.DB, config *config.Config) *Handlers {
	return &Handlers{
		AuthService:         services.Auth,
		UserService:         services.User,
		PostService:         services.Post,
		ChatService:         services.Chat,
		NotificationService: services.Notification,
		Hub:                 hub,
		DB:                  db,
		Cfg:                 config,
		Validate:            validator.New(),
	}
}

func (h *Handlers) HomeHandler(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]string{"service": "ssocieyt"}, http.StatusOK)
}

func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.HealthCheck(); err != nil {
		WriteError(w, "База данных недоступна", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// currentUserID достает id пользователя, положенный в контекст auth middleware
func currentUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value("userID").(string)
	return userID, ok && userID != ""
}

// formats image
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// readImageUpload разбирает multipart-форму и достает файл из поля "image".
// Ошибка уже записана в ответ, вызывающему достаточно выйти.
func (h *Handlers) readImageUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	// setting the size limit from the config
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		if err.Error() == "http: request body too large" {
			WriteError(w, fmt.Sprintf("Файл слишком большой (макс. %d MB)",
				h.Cfg.MaxUploadSize/(1024*1024)), http.StatusBadRequest)
		} else {
			WriteError(w, "Ошибка при обработке файла", http.StatusBadRequest)
		}
		return nil, nil, err
	}

	// getting the file
	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		WriteError(w, "Не удалось получить файл", http.StatusBadRequest)
		return nil, nil, err
	}

	// check formats
	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		file.Close()
		WriteError(w, "Неподдерживаемый тип файла. Разрешены: JPEG, PNG, GIF, WebP", http.StatusBadRequest)
		return nil, nil, fmt.Errorf("неподдерживаемый тип файла: %s", contentType)
	}

	return file, fileHeader, nil
}
