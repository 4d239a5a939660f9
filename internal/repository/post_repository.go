package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"ssocieyt/internal/apperror"
	"ssocieyt/internal/models"
	"time"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	post.CreatedAt = time.Now()

	query := `
		INSERT INTO posts
		(post_id, author_id, author_name, author_photo_url, content, image_url,
		 code_snippet, code_language, game_tag, comments_count, is_deleted, created_at)
		VALUES
		(:post_id, :author_id, :author_name, :author_photo_url, :content, :image_url,
		 :code_snippet, :code_language, :game_tag, 0, FALSE, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	post.Likes = []string{}

	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post

	query := `SELECT * FROM posts WHERE post_id = $1 AND is_deleted = FALSE`

	err := r.db.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("пост", postID)
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	if err := r.loadLikes(ctx, []*models.Post{&post}); err != nil {
		return nil, err
	}

	return &post, nil
}

// GetFeed - лента по keyset-курсору (created_at, post_id), новые сверху.
// Последовательные страницы не пересекаются при стабильных данных.
func (r *postRepository) GetFeed(ctx context.Context, cursor *FeedCursor, limit int) ([]*models.Post, error) {
	posts := []*models.Post{}

	var err error
	if cursor == nil {
		query := `
			SELECT * FROM posts
			WHERE is_deleted = FALSE
			ORDER BY created_at DESC, post_id DESC
			LIMIT $1
		`
		err = r.db.SelectContext(ctx, &posts, query, limit)
	} else {
		query := `
			SELECT * FROM posts
			WHERE is_deleted = FALSE AND (created_at, post_id) < ($1, $2)
			ORDER BY created_at DESC, post_id DESC
			LIMIT $3
		`
		err = r.db.SelectContext(ctx, &posts, query, cursor.CreatedAt, cursor.PostID, limit)
	}

	if err != nil {
		return nil, fmt.Errorf("ошибка при получении ленты: %w", err)
	}

	if err := r.loadLikes(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) GetByAuthorID(ctx context.Context, authorID string) ([]*models.Post, error) {
	posts := []*models.Post{}

	query := `
		SELECT * FROM posts
		WHERE author_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC, post_id DESC
	`

	err := r.db.SelectContext(ctx, &posts, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении постов автора: %w", err)
	}

	if err := r.loadLikes(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) GetLikedByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	posts := []*models.Post{}

	query := `
		SELECT p.* FROM posts p
		JOIN post_likes pl ON pl.post_id = p.post_id
		WHERE pl.user_id = $1 AND p.is_deleted = FALSE
		ORDER BY p.created_at DESC, p.post_id DESC
	`

	err := r.db.SelectContext(ctx, &posts, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении понравившихся постов: %w", err)
	}

	if err := r.loadLikes(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// Like идемпотентен: повторный лайк не меняет множество лайков.
// Уведомление пишется в той же транзакции и только для нового лайка.
func (r *postRepository) Like(ctx context.Context, postID, userID string, notification *models.Notification) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при добавлении лайка: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке вставленных строк: %w", err)
	}

	if rowsAffected > 0 && notification != nil {
		if err := insertNotificationTx(ctx, tx, notification); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при удалении лайка: %w", err)
	}

	return nil
}

func (r *postRepository) SoftDelete(ctx context.Context, postID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts SET is_deleted = TRUE WHERE post_id = $1 AND is_deleted = FALSE`,
		postID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("пост", postID)
	}

	return nil
}

// loadLikes подгружает множества лайков одним запросом на все посты
func (r *postRepository) loadLikes(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(posts))
	byID := make(map[string]*models.Post, len(posts))
	for _, post := range posts {
		post.Likes = []string{}
		ids = append(ids, post.PostID)
		byID[post.PostID] = post
	}

	rows := []struct {
		PostID string `db:"post_id"`
		UserID string `db:"user_id"`
	}{}

	query := `SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1) ORDER BY created_at`

	err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("ошибка при получении лайков: %w", err)
	}

	for _, row := range rows {
		if post, ok := byID[row.PostID]; ok {
			post.Likes = append(post.Likes, row.UserID)
		}
	}

	return nil
}
