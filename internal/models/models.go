package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GameHandles - ники пользователя в играх (valorant, csgo, apex, fortnite и т.д.)
// Хранится в колонке jsonb.
type GameHandles map[string]string

func (g GameHandles) Value() (driver.Value, error) {
	if g == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(g)
}

func (g *GameHandles) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*g = GameHandles{}
		return nil
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("неподдерживаемый тип для game_handles: %T", src)
	}
}

type User struct {
	UserID                 string      `json:"userId" db:"user_id"`
	Email                  string      `json:"email" db:"email"`
	Username               string      `json:"username" db:"username"`
	DisplayName            string      `json:"displayName" db:"display_name"`
	PhotoURL               *string     `json:"photoUrl" db:"photo_url"`
	Bio                    string      `json:"bio" db:"bio"`
	IsPrivate              bool        `json:"isPrivate" db:"is_private"`
	GameHandles            GameHandles `json:"gameHandles" db:"game_handles"`
	PasswordHash           string      `json:"-" db:"password_hash"`
	RefreshToken           string      `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time   `json:"-" db:"refresh_token_expiry_time"`
	CreatedAt              time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time   `json:"updatedAt" db:"updated_at"`
	Followers              []string    `json:"followers" db:"-"`
	Following              []string    `json:"following" db:"-"`
}

type Post struct {
	PostID         string    `json:"postId" db:"post_id"`
	AuthorID       string    `json:"authorId" db:"author_id"`
	AuthorName     string    `json:"authorName" db:"author_name"`
	AuthorPhotoURL *string   `json:"authorPhotoUrl" db:"author_photo_url"`
	Content        string    `json:"content" db:"content"`
	ImageURL       *string   `json:"imageUrl" db:"image_url"`
	CodeSnippet    *string   `json:"codeSnippet" db:"code_snippet"`
	CodeLanguage   *string   `json:"codeLanguage" db:"code_language"`
	GameTag        string    `json:"gameTag" db:"game_tag"`
	CommentsCount  int       `json:"commentsCount" db:"comments_count"`
	IsDeleted      bool      `json:"-" db:"is_deleted"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	Likes          []string  `json:"likes" db:"-"`
}

type Comment struct {
	CommentID      string    `json:"commentId" db:"comment_id"`
	PostID         string    `json:"postId" db:"post_id"`
	AuthorID       string    `json:"authorId" db:"author_id"`
	AuthorName     string    `json:"authorName" db:"author_name"`
	AuthorPhotoURL *string   `json:"authorPhotoUrl" db:"author_photo_url"`
	Content        string    `json:"content" db:"content"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

type Chat struct {
	ChatID              string     `json:"chatId" db:"chat_id"`
	ParticipantA        string     `json:"-" db:"participant_a"`
	ParticipantB        string     `json:"-" db:"participant_b"`
	LastMessage         *string    `json:"lastMessage" db:"last_message"`
	LastMessageSenderID *string    `json:"lastMessageSenderId" db:"last_message_sender_id"`
	LastMessageTime     *time.Time `json:"lastMessageTime" db:"last_message_time"`
	CreatedAt           time.Time  `json:"createdAt" db:"created_at"`
	Participants        []string   `json:"participants" db:"-"`
	UnreadCount         int        `json:"unreadCount" db:"unread_count"`
}

type Message struct {
	MessageID    string    `json:"messageId" db:"message_id"`
	ChatID       string    `json:"chatId" db:"chat_id"`
	SenderID     string    `json:"senderId" db:"sender_id"`
	Text         *string   `json:"text" db:"text"`
	CodeSnippet  *string   `json:"codeSnippet" db:"code_snippet"`
	CodeLanguage *string   `json:"codeLanguage" db:"code_language"`
	ImageURL     *string   `json:"imageUrl" db:"image_url"`
	Read         bool      `json:"read" db:"read"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type Notification struct {
	NotificationID string    `json:"notificationId" db:"notification_id"`
	RecipientID    string    `json:"recipientId" db:"recipient_id"`
	SenderID       string    `json:"senderId" db:"sender_id"`
	SenderName     string    `json:"senderName" db:"sender_name"`
	SenderPhotoURL *string   `json:"senderPhotoUrl" db:"sender_photo_url"`
	Type           string    `json:"type" db:"type"`
	PostID         *string   `json:"postId" db:"post_id"`
	Content        string    `json:"content" db:"content"`
	Read           bool      `json:"read" db:"read"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// types notification
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)
