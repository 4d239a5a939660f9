package service

import (
	"context"
	"ssocieyt/internal/models"
	"ssocieyt/internal/repository"
)

type NotificationService interface {
	GetNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.notificationRepo.GetByRecipient(ctx, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
