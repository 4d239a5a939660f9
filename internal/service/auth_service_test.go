package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ssocieyt/internal/apperror"
	"ssocieyt/internal/config"
	"ssocieyt/internal/models"
)

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:         "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 168 * time.Hour,
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Успешная регистрация", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, authTestConfig())

		userRepo.On("GetUserByEmail", ctx, "new@example.com").
			Return(nil, apperror.NotFound("пользователь", "new@example.com"))
		userRepo.On("IsUsernameTaken", ctx, "gamerone").Return(false, nil)
		userRepo.On("CreateUser", ctx, mock.AnythingOfType("*models.User"), "password123").Return(nil)

		user, err := service.Register(ctx, RegisterRequest{
			Email:       "new@example.com",
			Username:    "gamerone",
			DisplayName: "Gamer One",
			Password:    "password123",
		})

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.NotEmpty(t, user.RefreshToken)
		assert.Equal(t, []string{}, user.Followers)
		assert.Equal(t, []string{}, user.Following)
	})

	t.Run("Email уже занят", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, authTestConfig())

		userRepo.On("GetUserByEmail", ctx, "taken@example.com").
			Return(&models.User{UserID: "u1", Email: "taken@example.com"}, nil)

		user, err := service.Register(ctx, RegisterRequest{
			Email:    "taken@example.com",
			Username: "gamertwo",
			Password: "password123",
		})

		assert.Error(t, err)
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, apperror.ErrConflict))
	})

	t.Run("Username уже занят", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, authTestConfig())

		userRepo.On("GetUserByEmail", ctx, "new@example.com").
			Return(nil, apperror.NotFound("пользователь", "new@example.com"))
		userRepo.On("IsUsernameTaken", ctx, "gamerone").Return(true, nil)

		user, err := service.Register(ctx, RegisterRequest{
			Email:    "new@example.com",
			Username: "gamerone",
			Password: "password123",
		})

		assert.Error(t, err)
		assert.Nil(t, user)
		assert.True(t, errors.Is(err, apperror.ErrConflict))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	user := &models.User{
		UserID:   "u1",
		Email:    "test@example.com",
		Username: "gamerone",
	}

	t.Run("Успешный вход с выдачей пары токенов", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, authTestConfig())

		userRepo.On("VerifyPassword", ctx, "test@example.com", "password123").Return(user, nil)
		userRepo.On("UpdateRefreshToken", ctx, "u1", mock.AnythingOfType("string"),
			mock.AnythingOfType("time.Time")).Return(nil)

		loggedIn, accessToken, refreshToken, err := service.Login(ctx, "test@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, "u1", loggedIn.UserID)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)

		// access token несет данные пользователя
		fromToken, err := service.GetUserFromToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", fromToken.UserID)
		assert.Equal(t, "gamerone", fromToken.Username)
	})

	t.Run("Неверный пароль", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, authTestConfig())

		userRepo.On("VerifyPassword", ctx, "test@example.com", "wrong").
			Return(nil, apperror.ValidationFailed("password", "неверный пароль"))

		loggedIn, _, _, err := service.Login(ctx, "test@example.com", "wrong")

		assert.Error(t, err)
		assert.Nil(t, loggedIn)
	})
}

func TestAuthService_RefreshTokens(t *testing.T) {
	ctx := context.Background()

	user := &models.User{
		UserID:       "u1",
		Email:        "test@example.com",
		Username:     "gamerone",
		RefreshToken: "old-token",
	}

	t.Run("Refresh token ротируется", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, authTestConfig())

		userRepo.On("GetUserByRefreshToken", ctx, "old-token").Return(user, nil)
		userRepo.On("UpdateRefreshToken", ctx, "u1", mock.AnythingOfType("string"),
			mock.AnythingOfType("time.Time")).Return(nil)

		_, accessToken, newRefreshToken, err := service.RefreshTokens(ctx, "old-token")

		require.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEqual(t, "old-token", newRefreshToken)
	})

	t.Run("Просроченный refresh token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		service := NewAuthService(userRepo, authTestConfig())

		userRepo.On("GetUserByRefreshToken", ctx, "expired").
			Return(nil, errors.New("недействительный или просроченный refresh token"))

		_, _, _, err := service.RefreshTokens(ctx, "expired")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "недействительный")
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Run("Чужая подпись отклоняется", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), authTestConfig())
		other := NewAuthService(new(MockUserRepository), &config.Config{
			JWTSecretKey:        "other-secret",
			AccessTokenDuration: 15 * time.Minute,
		}).(*authService)

		user := &models.User{UserID: "u1", Email: "a@b.c", Username: "gamerone"}
		foreignToken, err := other.generateAccessToken(user)
		require.NoError(t, err)

		_, err = service.ValidateToken(foreignToken)
		assert.Error(t, err)
	})
}
