package service

import (
	"context"
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

type UserService interface {
	GetProfile(ctx context.Context, targetID, viewerID string) (*models.User, error)
	UpdateProfile(ctx context.Context, req repository.UpdateProfileRequest) error
	UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (string, error)
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	SearchUsers(ctx context.Context, query string) ([]*models.User, error)
	CheckUsernameAvailability(ctx context.Context, username string) (bool, error)
}

type userService struct {
	userRepo repository.UserRepository
	storage  storage.Storage
	hub      ws.Publisher
	cfg      *config.Config
}

func NewUserService(userRepo repository.UserRepository, storage storage.Storage, hub ws.Publisher, cfg *config.Config) UserService {
	return &userService{
		userRepo: userRepo,
		storage:  storage,
		hub:      hub,
		cfg:      cfg,
	}
}

// GetProfile учитывает приватность: закрытый профиль видят только сам
// пользователь и его подписчики
func (s *userService) GetProfile(ctx context.Context, targetID, viewerID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if user.IsPrivate && targetID != viewerID && !slices.Contains(user.Followers, viewerID) {
		return nil, apperror.Forbidden("профиль приватный")
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, req repository.UpdateProfileRequest) error {
	if req.DisplayName != nil && strings.TrimSpace(*req.DisplayName) == "" {
		return apperror.ValidationFailed("displayName", "имя не может быть пустым")
	}

	return s.userRepo.UpdateProfile(ctx, req)
}

func (s *userService) UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (string, error) {
	objectName, photoURL, err := s.storage.Upload(ctx, "avatars/"+userID, fileName, file, size)
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки аватара в MinIO: %w", err)
	}

	// no orphaned blob: if the row update fails, delete the object
	if err := s.userRepo.UpdatePhotoURL(ctx, userID, photoURL); err != nil {
		s.storage.Delete(ctx, objectName)
		return "", err
	}

	return photoURL, nil
}

func (s *userService) Follow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return apperror.ValidationFailed("userId", "нельзя подписаться на себя")
	}

	// follower data is denormalized into the notification
	follower, err := s.userRepo.GetUserByID(ctx, followerID)
	if err != nil {
		return err
	}

	// followee must exist
	if _, err := s.userRepo.GetUserByID(ctx, followeeID); err != nil {
		return err
	}

	notification := &models.Notification{
		RecipientID:    followeeID,
		SenderID:       follower.UserID,
		SenderName:     follower.DisplayName,
		SenderPhotoURL: follower.PhotoURL,
		Type:           models.NotificationFollow,
	}

	if err := s.userRepo.Follow(ctx, followerID, followeeID, notification); err != nil {
		return err
	}

	pushNotification(s.hub, notification)

	return nil
}

func (s *userService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return apperror.ValidationFailed("userId", "нельзя отписаться от себя")
	}

	return s.userRepo.Unfollow(ctx, followerID, followeeID)
}

func (s *userService) SearchUsers(ctx context.Context, query string) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("q", "пустой поисковый запрос")
	}

	return s.userRepo.SearchUsers(ctx, query, s.cfg.SearchLimit)
}

func (s *userService) CheckUsernameAvailability(ctx context.Context, username string) (bool, error) {
	taken, err := s.userRepo.IsUsernameTaken(ctx, username)
	if err != nil {
		return false, err
	}

	return !taken, nil
}
