package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"ssocieyt/internal/apperror"
	"ssocieyt/internal/models"
	"strings"
	"time"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	// create password hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}

	// create user id
	user.UserID = uuid.New().String()
	user.Username = strings.ToLower(user.Username)
	user.PasswordHash = string(hashedPassword)

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (user_id, email, username, display_name, photo_url, bio, is_private,
		                   game_handles, password_hash, refresh_token, refresh_token_expiry_time,
		                   created_at, updated_at)
		VALUES (:user_id, :email, :username, :display_name, :photo_url, :bio, :is_private,
		        :game_handles, :password_hash, :refresh_token, :refresh_token_expiry_time,
		        :created_at, :updated_at)
	`

	_, err = r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE user_id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("пользователь", userID)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	// loading the edges of the follow graph
	if user.Followers, err = r.GetFollowers(ctx, userID); err != nil {
		return nil, err
	}
	if user.Following, err = r.GetFollowing(ctx, userID); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("пользователь", email)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по email: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User

	query := `SELECT * FROM users WHERE username = $1`

	err := r.db.GetContext(ctx, &user, query, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("пользователь", username)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по username: %w", err)
	}

	return &user, nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// checking that the password hash is the same
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, apperror.ValidationFailed("password", "неверный пароль")
	}

	return user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, req UpdateProfileRequest) error {
	sets := []string{"updated_at = now()"}
	args := map[string]interface{}{"user_id": req.UserID}

	if req.DisplayName != nil {
		sets = append(sets, "display_name = :display_name")
		args["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		sets = append(sets, "bio = :bio")
		args["bio"] = *req.Bio
	}
	if req.IsPrivate != nil {
		sets = append(sets, "is_private = :is_private")
		args["is_private"] = *req.IsPrivate
	}
	if req.GameHandles != nil {
		sets = append(sets, "game_handles = :game_handles")
		args["game_handles"] = req.GameHandles
	}

	query := fmt.Sprintf("UPDATE users SET %s WHERE user_id = :user_id", strings.Join(sets, ", "))

	result, err := r.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении профиля: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("пользователь", req.UserID)
	}

	return nil
}

func (r *userRepository) UpdatePhotoURL(ctx context.Context, userID, photoURL string) error {
	query := `UPDATE users SET photo_url = $1, updated_at = now() WHERE user_id = $2`

	result, err := r.db.ExecContext(ctx, query, photoURL, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении аватара: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return apperror.NotFound("пользователь", userID)
	}

	return nil
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $1, refresh_token_expiry_time = $2
		WHERE user_id = $3
	`

	_, err := r.db.ExecContext(ctx, query, refreshToken, expiryTime, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении refresh token: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	var user models.User

	query := `
		SELECT * FROM users
		WHERE refresh_token = $1
		AND refresh_token_expiry_time > CURRENT_TIMESTAMP
	`

	err := r.db.GetContext(ctx, &user, query, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("недействительный или просроченный refresh token")
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по refresh token: %w", err)
	}

	return &user, nil
}

// Follow добавляет ребро follower -> followee и уведомление в одной транзакции.
// Повторный Follow - no-op (ON CONFLICT DO NOTHING).
func (r *userRepository) Follow(ctx context.Context, followerID, followeeID string, notification *models.Notification) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при подписке: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке вставленных строк: %w", err)
	}

	// notification only for a new edge
	if rowsAffected > 0 && notification != nil {
		if err := insertNotificationTx(ctx, tx, notification); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при отписке: %w", err)
	}

	return nil
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`

	err := r.db.GetContext(ctx, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке подписки: %w", err)
	}

	return exists, nil
}

func (r *userRepository) GetFollowers(ctx context.Context, userID string) ([]string, error) {
	followers := []string{}

	query := `SELECT follower_id FROM follows WHERE followee_id = $1 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &followers, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении подписчиков: %w", err)
	}

	return followers, nil
}

func (r *userRepository) GetFollowing(ctx context.Context, userID string) ([]string, error) {
	following := []string{}

	query := `SELECT followee_id FROM follows WHERE follower_id = $1 ORDER BY created_at`

	err := r.db.SelectContext(ctx, &following, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении подписок: %w", err)
	}

	return following, nil
}

// SearchUsers - регистронезависимый поиск подстроки по username и display_name
func (r *userRepository) SearchUsers(ctx context.Context, search string, limit int) ([]*models.User, error) {
	users := []*models.User{}

	query := `
		SELECT * FROM users
		WHERE username ILIKE '%' || $1 || '%' OR display_name ILIKE '%' || $1 || '%'
		ORDER BY username
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &users, query, search, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске пользователей: %w", err)
	}

	return users, nil
}

func (r *userRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	err := r.db.GetContext(ctx, &exists, query, strings.ToLower(username))
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке username: %w", err)
	}

	return exists, nil
}
