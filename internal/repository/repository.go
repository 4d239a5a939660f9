package repository

import (
	"context"
	"github.com/jmoiron/sqlx"
	"ssocieyt/internal/models"
	"time"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) error
	UpdatePhotoURL(ctx context.Context, userID, photoURL string) error
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
	Follow(ctx context.Context, followerID, followeeID string, notification *models.Notification) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	GetFollowers(ctx context.Context, userID string) ([]string, error)
	GetFollowing(ctx context.Context, userID string) ([]string, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error)
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	GetFeed(ctx context.Context, cursor *FeedCursor, limit int) ([]*models.Post, error)
	GetByAuthorID(ctx context.Context, authorID string) ([]*models.Post, error)
	GetLikedByUser(ctx context.Context, userID string) ([]*models.Post, error)
	Like(ctx context.Context, postID, userID string, notification *models.Notification) error
	Unlike(ctx context.Context, postID, userID string) error
	SoftDelete(ctx context.Context, postID string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment, notification *models.Notification) error
	GetByID(ctx context.Context, commentID string) (*models.Comment, error)
	GetByPostID(ctx context.Context, postID string) ([]*models.Comment, error)
	Delete(ctx context.Context, commentID, postID string) error
}

type ChatRepository interface {
	CreateOrGet(ctx context.Context, userA, userB string) (*models.Chat, error)
	GetByID(ctx context.Context, chatID string) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID string) ([]*models.Chat, error)
	SendMessage(ctx context.Context, message *models.Message, preview string) error
	GetMessages(ctx context.Context, chatID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, chatID, userID string) error
}

type NotificationRepository interface {
	GetByRecipient(ctx context.Context, recipientID string) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) error
}

// UpdateProfileRequest - частичное обновление профиля (nil = не менять)
type UpdateProfileRequest struct {
	UserID      string
	DisplayName *string
	Bio         *string
	IsPrivate   *bool
	GameHandles models.GameHandles
}

// FeedCursor - курсор keyset-пагинации ленты
type FeedCursor struct {
	CreatedAt time.Time
	PostID    string
}

type Repository struct {
	User         UserRepository
	Post         PostRepository
	Comment      CommentRepository
	Chat         ChatRepository
	Notification NotificationRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:         NewUserRepository(db),
		Post:         NewPostRepository(db),
		Comment:      NewCommentRepository(db),
		Chat:         NewChatRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
