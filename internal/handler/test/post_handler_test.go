package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ssocieyt/internal/apperror"
	"ssocieyt/internal/config"
	handlers "ssocieyt/internal/handler"
	"ssocieyt/internal/models"
	"ssocieyt/internal/repository"
)

func newPostHandler(postService *MockPostService) *handlers.Handlers {
	return &handlers.Handlers{
		PostService: postService,
		Cfg:         &config.Config{FeedPageSize: 20},
		Validate:    validator.New(),
	}
}

// authed кладет id пользователя в контекст так же, как auth middleware
func authed(req *http.Request, userID string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), "userID", userID))
}

func TestLikePost(t *testing.T) {
	t.Run("Лайк от авторизованного пользователя", func(t *testing.T) {
		mockPosts := new(MockPostService)
		handler := newPostHandler(mockPosts)

		mockPosts.On("LikePost", mock.Anything, "p1", "u1").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/posts/p1/like", nil)
		req = mux.SetURLVars(authed(req, "u1"), map[string]string{"id": "p1"})
		rec := httptest.NewRecorder()

		handler.LikePost(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockPosts.AssertExpectations(t)
	})

	t.Run("Без аутентификации - 401", func(t *testing.T) {
		handler := newPostHandler(new(MockPostService))

		req := httptest.NewRequest(http.MethodPost, "/api/posts/p1/like", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "p1"})
		rec := httptest.NewRecorder()

		handler.LikePost(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Лайк несуществующего поста - 404", func(t *testing.T) {
		mockPosts := new(MockPostService)
		handler := newPostHandler(mockPosts)

		mockPosts.On("LikePost", mock.Anything, "gone", "u1").
			Return(apperror.NotFound("пост", "gone"))

		req := httptest.NewRequest(http.MethodPost, "/api/posts/gone/like", nil)
		req = mux.SetURLVars(authed(req, "u1"), map[string]string{"id": "gone"})
		rec := httptest.NewRecorder()

		handler.LikePost(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetFeed(t *testing.T) {
	t.Run("Первая страница с курсором в ответе", func(t *testing.T) {
		mockPosts := new(MockPostService)
		handler := newPostHandler(mockPosts)

		createdAt := time.Now().UTC().Truncate(time.Millisecond)
		posts := []*models.Post{
			{PostID: "p1", Content: "hello", CreatedAt: createdAt, Likes: []string{}},
		}

		mockPosts.On("GetFeed", mock.Anything, (*repository.FeedCursor)(nil), 0).Return(posts, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		rec := httptest.NewRecorder()

		handler.GetFeed(rec, authed(req, "u1"))

		assert.Equal(t, http.StatusOK, rec.Code)

		var response handlers.FeedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		require.Len(t, response.Posts, 1)
		assert.NotEmpty(t, response.NextCursor)
	})

	t.Run("Курсор из query передается сервису", func(t *testing.T) {
		mockPosts := new(MockPostService)
		handler := newPostHandler(mockPosts)

		cursorTime := time.Now().UTC().Truncate(time.Millisecond)
		mockPosts.On("GetFeed", mock.Anything, mock.MatchedBy(func(cursor *repository.FeedCursor) bool {
			return cursor != nil && cursor.PostID == "p5" && cursor.CreatedAt.Equal(cursorTime)
		}), 10).Return([]*models.Post{}, nil)

		url := "/api/posts?limit=10&cursorTime=" + cursorTime.Format(time.RFC3339Nano) + "&cursorId=p5"
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()

		handler.GetFeed(rec, authed(req, "u1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		mockPosts.AssertExpectations(t)
	})
}

func TestDeletePost(t *testing.T) {
	t.Run("Не автор получает 403", func(t *testing.T) {
		mockPosts := new(MockPostService)
		handler := newPostHandler(mockPosts)

		mockPosts.On("DeletePost", mock.Anything, "p1", "stranger").
			Return(apperror.Forbidden("удалять пост может только автор"))

		req := httptest.NewRequest(http.MethodDelete, "/api/posts/p1", nil)
		req = mux.SetURLVars(authed(req, "stranger"), map[string]string{"id": "p1"})
		rec := httptest.NewRecorder()

		handler.DeletePost(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
