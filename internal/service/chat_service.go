package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"ssocieyt/internal/apperror"
	"ssocieyt/internal/config"
	"ssocieyt/internal/models"
	"ssocieyt/internal/repository"
	"ssocieyt/internal/storage"
	"ssocieyt/internal/ws"
	"strings"
)

type SendMessageRequest struct {
	ChatID       string
	SenderID     string
	Text         *string
	CodeSnippet  *string
	CodeLanguage *string
	ImageURL     *string
}

type ChatService interface {
	StartChat(ctx context.Context, userID, peerID string) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID string) ([]*models.Chat, error)
	SendMessage(ctx context.Context, req SendMessageRequest) (*models.Message, error)
	GetMessages(ctx context.Context, chatID, userID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, chatID, userID string) error
	UploadMessageImage(ctx context.Context, chatID, userID, fileName string, file io.Reader, size int64) (string, error)
	CanSubscribe(ctx context.Context, chatID, userID string) error
	MessagesSnapshot(ctx context.Context, chatID string) ([]byte, error)
}

type chatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	storage  storage.Storage
	hub      ws.Publisher
	cfg      *config.Config
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository,
	storage storage.Storage, hub ws.Publisher, cfg *config.Config) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		storage:  storage,
		hub:      hub,
		cfg:      cfg,
	}
}

// StartChat идемпотентен: id чата детерминирован парой участников
func (s *chatService) StartChat(ctx context.Context, userID, peerID string) (*models.Chat, error) {
	if userID == peerID {
		return nil, apperror.ValidationFailed("userId", "нельзя начать чат с самим собой")
	}

	// peer must exist
	if _, err := s.userRepo.GetUserByID(ctx, peerID); err != nil {
		return nil, err
	}

	return s.chatRepo.CreateOrGet(ctx, userID, peerID)
}

func (s *chatService) GetUserChats(ctx context.Context, userID string) ([]*models.Chat, error) {
	return s.chatRepo.GetUserChats(ctx, userID)
}

func (s *chatService) SendMessage(ctx context.Context, req SendMessageRequest) (*models.Message, error) {
	hasText := req.Text != nil && strings.TrimSpace(*req.Text) != ""
	hasCode := req.CodeSnippet != nil && strings.TrimSpace(*req.CodeSnippet) != ""
	hasImage := req.ImageURL != nil && *req.ImageURL != ""
	if !hasText && !hasCode && !hasImage {
		return nil, apperror.ValidationFailed("text", "сообщение не может быть пустым")
	}

	chat, err := s.chatRepo.GetByID(ctx, req.ChatID)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(chat.Participants, req.SenderID) {
		return nil, apperror.Forbidden("вы не участник этого чата")
	}

	message := &models.Message{
		ChatID:       req.ChatID,
		SenderID:     req.SenderID,
		Text:         req.Text,
		CodeSnippet:  req.CodeSnippet,
		CodeLanguage: req.CodeLanguage,
		ImageURL:     req.ImageURL,
	}

	if err := s.chatRepo.SendMessage(ctx, message, messagePreview(message)); err != nil {
		return nil, err
	}

	// live update: подписчики чата получают полный снимок, собеседник - пинг
	// активности на свой пользовательский стрим
	if s.hub != nil {
		if snapshot, err := s.MessagesSnapshot(ctx, req.ChatID); err == nil {
			s.hub.PublishToChat(req.ChatID, snapshot)
		}

		if ping, err := json.Marshal(WSEvent{Type: EventChatActivity, ChatID: req.ChatID}); err == nil {
			for _, participant := range chat.Participants {
				if participant != req.SenderID {
					s.hub.SendToUser(participant, ping)
				}
			}
		}
	}

	return message, nil
}

func (s *chatService) GetMessages(ctx context.Context, chatID, userID string) ([]*models.Message, error) {
	if err := s.CanSubscribe(ctx, chatID, userID); err != nil {
		return nil, err
	}

	return s.chatRepo.GetMessages(ctx, chatID)
}

func (s *chatService) MarkRead(ctx context.Context, chatID, userID string) error {
	if err := s.CanSubscribe(ctx, chatID, userID); err != nil {
		return err
	}

	return s.chatRepo.MarkRead(ctx, chatID, userID)
}

func (s *chatService) UploadMessageImage(ctx context.Context, chatID, userID, fileName string, file io.Reader, size int64) (string, error) {
	if err := s.CanSubscribe(ctx, chatID, userID); err != nil {
		return "", err
	}

	_, imageURL, err := s.storage.Upload(ctx, "messages/"+chatID, fileName, file, size)
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки изображения в MinIO: %w", err)
	}

	return imageURL, nil
}

// CanSubscribe проверяет, что пользователь - участник чата
func (s *chatService) CanSubscribe(ctx context.Context, chatID, userID string) error {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}

	if !slices.Contains(chat.Participants, userID) {
		return apperror.Forbidden("вы не участник этого чата")
	}

	return nil
}

// MessagesSnapshot - полный упорядоченный список сообщений чата, как его
// получают живые подписчики
func (s *chatService) MessagesSnapshot(ctx context.Context, chatID string) ([]byte, error) {
	messages, err := s.chatRepo.GetMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	return json.Marshal(WSEvent{
		Type:     EventMessages,
		ChatID:   chatID,
		Messages: messages,
	})
}

func messagePreview(message *models.Message) string {
	if message.Text != nil && strings.TrimSpace(*message.Text) != "" {
		return *message.Text
	}
	if message.CodeSnippet != nil && strings.TrimSpace(*message.CodeSnippet) != "" {
		return "Фрагмент кода"
	}
	return "Изображение"
}
