package service

import (
	"encoding/json"
	"ssocieyt/internal/config"
	"ssocieyt/internal/models"
	"ssocieyt/internal/repository"
	"ssocieyt/internal/storage"
	"ssocieyt/internal/ws"
)

type Service struct {
	Auth         AuthService
	User         UserService
	Post         PostService
	Chat         ChatService
	Notification NotificationService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, hub ws.Publisher) *Service {
	return &Service{
		Auth:         NewAuthService(rep.User, cfg),
		User:         NewUserService(rep.User, storage, hub, cfg),
		Post:         NewPostService(rep.Post, rep.Comment, rep.User, storage, hub, cfg),
		Chat:         NewChatService(rep.Chat, rep.User, storage, hub, cfg),
		Notification: NewNotificationService(rep.Notification),
	}
}

// WSEvent - событие живой подписки. Подписчики чата получают полный
// упорядоченный снимок сообщений, а не дельту.
type WSEvent struct {
	Type         string               `json:"type"`
	ChatID       string               `json:"chatId,omitempty"`
	Messages     []*models.Message    `json:"messages,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

const (
	EventMessages     = "messages"
	EventChatActivity = "chatActivity"
	EventNotification = "notification"
)

// pushNotification шлет уведомление в живой стрим получателя.
// Пустой NotificationID значит, что запись не была вставлена (повторный
// лайк/подписка) - тогда и пушить нечего.
func pushNotification(hub ws.Publisher, notification *models.Notification) {
	if hub == nil || notification == nil || notification.NotificationID == "" {
		return
	}

	payload, err := json.Marshal(WSEvent{
		Type:         EventNotification,
		Notification: notification,
	})
	if err != nil {
		return
	}

	hub.SendToUser(notification.RecipientID, payload)
}
