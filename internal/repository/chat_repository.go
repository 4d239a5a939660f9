package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"ssocieyt/internal/apperror"
	"ssocieyt/internal/models"
	"time"
)

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{db: db}
}

// ChatIDFor - детерминированный id чата пары: ChatIDFor(a,b) == ChatIDFor(b,a)
func ChatIDFor(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// CreateOrGet идемпотентен: повторный вызов на той же паре возвращает тот же чат
func (r *chatRepository) CreateOrGet(ctx context.Context, userA, userB string) (*models.Chat, error) {
	if userA > userB {
		userA, userB = userB, userA
	}
	chatID := ChatIDFor(userA, userB)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chats (chat_id, participant_a, participant_b) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		chatID, userA, userB,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании чата: %w", err)
	}

	// unread counters for both participants
	_, err = tx.ExecContext(ctx,
		`INSERT INTO chat_unread (chat_id, user_id) VALUES ($1, $2), ($1, $3)
		 ON CONFLICT DO NOTHING`,
		chatID, userA, userB,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании счетчиков непрочитанного: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return r.GetByID(ctx, chatID)
}

func (r *chatRepository) GetByID(ctx context.Context, chatID string) (*models.Chat, error) {
	var chat models.Chat

	query := `SELECT *, 0 AS unread_count FROM chats WHERE chat_id = $1`

	err := r.db.GetContext(ctx, &chat, query, chatID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("чат", chatID)
		}
		return nil, fmt.Errorf("ошибка при получении чата: %w", err)
	}

	chat.Participants = []string{chat.ParticipantA, chat.ParticipantB}

	return &chat, nil
}

func (r *chatRepository) GetUserChats(ctx context.Context, userID string) ([]*models.Chat, error) {
	chats := []*models.Chat{}

	query := `
		SELECT c.*, COALESCE(cu.unread_count, 0) AS unread_count
		FROM chats c
		LEFT JOIN chat_unread cu ON cu.chat_id = c.chat_id AND cu.user_id = $1
		WHERE c.participant_a = $1 OR c.participant_b = $1
		ORDER BY c.last_message_time DESC NULLS LAST
	`

	err := r.db.SelectContext(ctx, &chats, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении чатов: %w", err)
	}

	for _, chat := range chats {
		chat.Participants = []string{chat.ParticipantA, chat.ParticipantB}
	}

	return chats, nil
}

// SendMessage - одна транзакция: сообщение, превью последнего сообщения на чате,
// инкремент непрочитанного у собеседника.
func (r *chatRepository) SendMessage(ctx context.Context, message *models.Message, preview string) error {
	message.MessageID = uuid.New().String()
	message.CreatedAt = time.Now()
	message.Read = false

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO messages (message_id, chat_id, sender_id, text, code_snippet, code_language, image_url, read, created_at)
		VALUES (:message_id, :chat_id, :sender_id, :text, :code_snippet, :code_language, :image_url, :read, :created_at)
	`

	_, err = tx.NamedExecContext(ctx, query, message)
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE chats SET last_message = $1, last_message_sender_id = $2, last_message_time = $3
		 WHERE chat_id = $4`,
		preview, message.SenderID, message.CreatedAt, message.ChatID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении превью чата: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("чат", message.ChatID)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE chat_unread SET unread_count = unread_count + 1
		 WHERE chat_id = $1 AND user_id <> $2`,
		message.ChatID, message.SenderID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении счетчика непрочитанного: %w", err)
	}

	return tx.Commit()
}

func (r *chatRepository) GetMessages(ctx context.Context, chatID string) ([]*models.Message, error) {
	messages := []*models.Message{}

	query := `
		SELECT * FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, message_id ASC
	`

	err := r.db.SelectContext(ctx, &messages, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении сообщений: %w", err)
	}

	return messages, nil
}

// MarkRead сбрасывает непрочитанное у читателя и помечает сообщения собеседника
func (r *chatRepository) MarkRead(ctx context.Context, chatID, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE chat_unread SET unread_count = 0 WHERE chat_id = $1 AND user_id = $2`,
		chatID, userID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при сбросе счетчика непрочитанного: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE messages SET read = TRUE WHERE chat_id = $1 AND sender_id <> $2 AND read = FALSE`,
		chatID, userID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при пометке сообщений прочитанными: %w", err)
	}

	return tx.Commit()
}
