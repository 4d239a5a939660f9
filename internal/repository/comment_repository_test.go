package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssocieyt/internal/apperror"
	"ssocieyt/internal/models"
)

func TestCommentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewCommentRepository(sqlxDB)

	ctx := context.Background()
	postID := uuid.New().String()

	t.Run("Комментарий и инкремент счетчика в одной транзакции", func(t *testing.T) {
		comment := &models.Comment{
			PostID:     postID,
			AuthorID:   uuid.New().String(),
			AuthorName: "gamerone",
			Content:    "nice play",
		}
		notification := &models.Notification{
			RecipientID: uuid.New().String(),
			SenderID:    comment.AuthorID,
			Type:        models.NotificationComment,
		}

		mock.ExpectBegin()
		mock.ExpectExec(`
			INSERT INTO comments (comment_id, post_id, author_id, author_name, author_photo_url, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE posts SET comments_count = comments_count + 1 WHERE post_id = $1 AND is_deleted = FALSE`).
			WithArgs(postID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`
			INSERT INTO notifications
			(notification_id, recipient_id, sender_id, sender_name, sender_photo_url, type, post_id, content, read, created_at)
			VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, FALSE, ?)
		`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Create(ctx, comment, notification)

		assert.NoError(t, err)
		assert.NotEmpty(t, comment.CommentID)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Комментарий к удаленному посту откатывается", func(t *testing.T) {
		comment := &models.Comment{
			PostID:   postID,
			AuthorID: uuid.New().String(),
			Content:  "too late",
		}

		mock.ExpectBegin()
		mock.ExpectExec(`
			INSERT INTO comments (comment_id, post_id, author_id, author_name, author_photo_url, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE posts SET comments_count = comments_count + 1 WHERE post_id = $1 AND is_deleted = FALSE`).
			WithArgs(postID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Create(ctx, comment, nil)

		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})
}

func TestCommentRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewCommentRepository(sqlxDB)

	ctx := context.Background()
	commentID := uuid.New().String()
	postID := uuid.New().String()

	t.Run("Удаление с декрементом счетчика", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM comments WHERE comment_id = $1 AND post_id = $2`).
			WithArgs(commentID, postID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE posts SET comments_count = GREATEST(comments_count - 1, 0) WHERE post_id = $1`).
			WithArgs(postID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Delete(ctx, commentID, postID)

		assert.NoError(t, err)

		err = mock.ExpectationsWereMet()
		assert.NoError(t, err)
	})

	t.Run("Комментарий не найден", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM comments WHERE comment_id = $1 AND post_id = $2`).
			WithArgs(commentID, postID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Delete(ctx, commentID, postID)

		assert.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})
}
