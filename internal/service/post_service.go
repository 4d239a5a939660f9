package service

import (
	"context"
	"fmt"
	"io"
	"ssocieyt/internal/apperror"
	"ssocieyt/internal/config"
	"ssocieyt/internal/models"
	"ssocieyt/internal/repository"
	"ssocieyt/internal/storage"
	"ssocieyt/internal/ws"
	"strings"
)

type CreatePostRequest struct {
	AuthorID     string
	Content      string
	CodeSnippet  *string
	CodeLanguage *string
	GameTag      string
	ImageName    string
	Image        io.Reader
	ImageSize    int64
}

type AddCommentRequest struct {
	PostID   string
	AuthorID string
	Content  string
}

type PostService interface {
	CreatePost(ctx context.Context, req CreatePostRequest) (*models.Post, error)
	GetPost(ctx context.Context, postID string) (*models.Post, error)
	GetFeed(ctx context.Context, cursor *repository.FeedCursor, limit int) ([]*models.Post, error)
	GetAuthorPosts(ctx context.Context, authorID string) ([]*models.Post, error)
	GetLikedPosts(ctx context.Context, userID string) ([]*models.Post, error)
	LikePost(ctx context.Context, postID, userID string) error
	UnlikePost(ctx context.Context, postID, userID string) error
	DeletePost(ctx context.Context, postID, userID string) error
	AddComment(ctx context.Context, req AddCommentRequest) (*models.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID string) error
	GetComments(ctx context.Context, postID string) ([]*models.Comment, error)
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	storage     storage.Storage
	hub         ws.Publisher
	cfg         *config.Config
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository,
	userRepo repository.UserRepository, storage storage.Storage, hub ws.Publisher, cfg *config.Config) PostService {
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		storage:     storage,
		hub:         hub,
		cfg:         cfg,
	}
}

// CreatePost сначала грузит картинку (если есть), потом пишет пост;
// при ошибке записи загруженный объект удаляется, чтобы не оставлять сирот.
func (p *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*models.Post, error) {
	hasCode := req.CodeSnippet != nil && strings.TrimSpace(*req.CodeSnippet) != ""
	if strings.TrimSpace(req.Content) == "" && !hasCode {
		return nil, apperror.ValidationFailed("content", "пост не может быть пустым")
	}

	// author snapshot: имя и фото фиксируются на момент создания
	author, err := p.userRepo.GetUserByID(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}

	var imageURL *string
	objectName := ""
	if req.Image != nil {
		var url string
		objectName, url, err = p.storage.Upload(ctx, "posts/"+req.AuthorID, req.ImageName, req.Image, req.ImageSize)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки изображения в MinIO: %w", err)
		}
		imageURL = &url
	}

	post := &models.Post{
		AuthorID:       author.UserID,
		AuthorName:     author.DisplayName,
		AuthorPhotoURL: author.PhotoURL,
		Content:        req.Content,
		ImageURL:       imageURL,
		CodeSnippet:    req.CodeSnippet,
		CodeLanguage:   req.CodeLanguage,
		GameTag:        req.GameTag,
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		if objectName != "" {
			p.storage.Delete(ctx, objectName)
		}
		return nil, err
	}

	return post, nil
}

func (p *postService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	return p.postRepo.GetByID(ctx, postID)
}

func (p *postService) GetFeed(ctx context.Context, cursor *repository.FeedCursor, limit int) ([]*models.Post, error) {
	if limit < 1 || limit > 100 {
		limit = p.cfg.FeedPageSize
	}

	return p.postRepo.GetFeed(ctx, cursor, limit)
}

func (p *postService) GetAuthorPosts(ctx context.Context, authorID string) ([]*models.Post, error) {
	return p.postRepo.GetByAuthorID(ctx, authorID)
}

func (p *postService) GetLikedPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	return p.postRepo.GetLikedByUser(ctx, userID)
}

func (p *postService) LikePost(ctx context.Context, postID, userID string) error {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	// no notification for liking your own post
	var notification *models.Notification
	if post.AuthorID != userID {
		liker, err := p.userRepo.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		notification = &models.Notification{
			RecipientID:    post.AuthorID,
			SenderID:       liker.UserID,
			SenderName:     liker.DisplayName,
			SenderPhotoURL: liker.PhotoURL,
			Type:           models.NotificationLike,
			PostID:         &post.PostID,
		}
	}

	if err := p.postRepo.Like(ctx, postID, userID, notification); err != nil {
		return err
	}

	pushNotification(p.hub, notification)

	return nil
}

func (p *postService) UnlikePost(ctx context.Context, postID, userID string) error {
	return p.postRepo.Unlike(ctx, postID, userID)
}

func (p *postService) DeletePost(ctx context.Context, postID, userID string) error {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		return apperror.Forbidden("удалять пост может только автор")
	}

	return p.postRepo.SoftDelete(ctx, postID)
}

func (p *postService) AddComment(ctx context.Context, req AddCommentRequest) (*models.Comment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperror.ValidationFailed("content", "комментарий не может быть пустым")
	}

	post, err := p.postRepo.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	author, err := p.userRepo.GetUserByID(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:         post.PostID,
		AuthorID:       author.UserID,
		AuthorName:     author.DisplayName,
		AuthorPhotoURL: author.PhotoURL,
		Content:        req.Content,
	}

	var notification *models.Notification
	if post.AuthorID != author.UserID {
		notification = &models.Notification{
			RecipientID:    post.AuthorID,
			SenderID:       author.UserID,
			SenderName:     author.DisplayName,
			SenderPhotoURL: author.PhotoURL,
			Type:           models.NotificationComment,
			PostID:         &post.PostID,
			Content:        req.Content,
		}
	}

	if err := p.commentRepo.Create(ctx, comment, notification); err != nil {
		return nil, err
	}

	pushNotification(p.hub, notification)

	return comment, nil
}

func (p *postService) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := p.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID {
		return apperror.Forbidden("удалять комментарий может только автор")
	}

	return p.commentRepo.Delete(ctx, commentID, comment.PostID)
}

func (p *postService) GetComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	if _, err := p.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	return p.commentRepo.GetByPostID(ctx, postID)
}
