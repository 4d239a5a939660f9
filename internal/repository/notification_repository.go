package repository

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"ssocieyt/internal/models"
	"time"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// insertNotificationTx - вставка уведомления внутри чужой транзакции
// (лайк, комментарий и подписка пишут уведомление атомарно с основной записью)
func insertNotificationTx(ctx context.Context, tx *sqlx.Tx, notification *models.Notification) error {
	notification.NotificationID = uuid.New().String()
	notification.CreatedAt = time.Now()

	query := `
		INSERT INTO notifications
		(notification_id, recipient_id, sender_id, sender_name, sender_photo_url, type, post_id, content, read, created_at)
		VALUES
		(:notification_id, :recipient_id, :sender_id, :sender_name, :sender_photo_url, :type, :post_id, :content, FALSE, :created_at)
	`

	_, err := tx.NamedExecContext(ctx, query, notification)
	if err != nil {
		return fmt.Errorf("ошибка при создании уведомления: %w", err)
	}

	return nil
}

func (r *notificationRepository) GetByRecipient(ctx context.Context, recipientID string) ([]*models.Notification, error) {
	notifications := []*models.Notification{}

	query := `
		SELECT * FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &notifications, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении уведомлений: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND read = FALSE`,
		recipientID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при пометке уведомлений прочитанными: %w", err)
	}

	return nil
}
