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

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create пишет комментарий, атомарный инкремент счетчика на посте и
// уведомление одной транзакцией.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment, notification *models.Notification) error {
	comment.CommentID = uuid.New().String()
	comment.CreatedAt = time.Now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO comments (comment_id, post_id, author_id, author_name, author_photo_url, content, created_at)
		VALUES (:comment_id, :post_id, :author_id, :author_name, :author_photo_url, :content, :created_at)
	`

	_, err = tx.NamedExecContext(ctx, query, comment)
	if err != nil {
		return fmt.Errorf("ошибка при создании комментария: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE posts SET comments_count = comments_count + 1 WHERE post_id = $1 AND is_deleted = FALSE`,
		comment.PostID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении счетчика комментариев: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("пост", comment.PostID)
	}

	if notification != nil {
		if err := insertNotificationTx(ctx, tx, notification); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*models.Comment, error) {
	var comment models.Comment

	query := `SELECT * FROM comments WHERE comment_id = $1`

	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("комментарий", commentID)
		}
		return nil, fmt.Errorf("ошибка при получении комментария: %w", err)
	}

	return &comment, nil
}

func (r *commentRepository) GetByPostID(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments := []*models.Comment{}

	query := `
		SELECT * FROM comments
		WHERE post_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.SelectContext(ctx, &comments, query, postID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении комментариев: %w", err)
	}

	return comments, nil
}

// Delete удаляет комментарий и декремент счетчика одной транзакцией
func (r *commentRepository) Delete(ctx context.Context, commentID, postID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE comment_id = $1 AND post_id = $2`,
		commentID, postID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при удалении комментария: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("комментарий", commentID)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE posts SET comments_count = GREATEST(comments_count - 1, 0) WHERE post_id = $1`,
		postID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении счетчика комментариев: %w", err)
	}

	return tx.Commit()
}
