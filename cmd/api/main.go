package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"ssocieyt/cmd/app"
	"ssocieyt/internal/config"
	handlers "ssocieyt/internal/handler"
	"ssocieyt/internal/middleware"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY не установлен в .env файле")
	}

	db, hub, services := app.App(cfg)
	defer db.CloseDB()

	handler := handlers.NewHandlers(services, hub, db, cfg)

	router := mux.NewRouter()

	// setting up routes
	router.HandleFunc("/", handler.HomeHandler)
	router.HandleFunc("/health", handler.HealthHandler)
	router.HandleFunc("/ws", handler.ServeWS)

	router.HandleFunc("/api/auth/register", handler.Register)
	router.HandleFunc("/api/auth/login", handler.Login)
	router.HandleFunc("/api/auth/refresh-token", handler.RefreshToken)

	router.HandleFunc("/api/me", handler.GetCurrentUser)
	router.HandleFunc("/api/users/search", handler.SearchUsers)
	router.HandleFunc("/api/users/check-username", handler.CheckUsername)
	router.HandleFunc("/api/users/{id}", handler.GetUser).Methods("GET")
	router.HandleFunc("/api/users/{id}", handler.UpdateProfile).Methods("PUT")
	router.HandleFunc("/api/users/{id}/avatar", handler.UploadAvatar)
	router.HandleFunc("/api/users/{id}/follow", handler.Follow).Methods("POST")
	router.HandleFunc("/api/users/{id}/follow", handler.Unfollow).Methods("DELETE")
	router.HandleFunc("/api/users/{id}/posts", handler.GetUserPosts)
	router.HandleFunc("/api/me/likes", handler.GetLikedPosts)

	router.HandleFunc("/api/posts", handler.CreatePost).Methods("POST")
	router.HandleFunc("/api/posts", handler.GetFeed).Methods("GET")
	router.HandleFunc("/api/posts/{id}", handler.GetPost).Methods("GET")
	router.HandleFunc("/api/posts/{id}", handler.DeletePost).Methods("DELETE")
	router.HandleFunc("/api/posts/{id}/like", handler.LikePost).Methods("POST")
	router.HandleFunc("/api/posts/{id}/like", handler.UnlikePost).Methods("DELETE")
	router.HandleFunc("/api/posts/{id}/comments", handler.GetComments).Methods("GET")
	router.HandleFunc("/api/posts/{id}/comments", handler.AddComment).Methods("POST")
	router.HandleFunc("/api/posts/{id}/comments/{commentId}", handler.DeleteComment).Methods("DELETE")

	router.HandleFunc("/api/chats", handler.StartChat).Methods("POST")
	router.HandleFunc("/api/chats", handler.GetChats).Methods("GET")
	router.HandleFunc("/api/chats/{id}/messages", handler.GetMessages).Methods("GET")
	router.HandleFunc("/api/chats/{id}/messages", handler.SendMessage).Methods("POST")
	router.HandleFunc("/api/chats/{id}/read", handler.MarkChatRead)
	router.HandleFunc("/api/chats/{id}/images", handler.UploadMessageImage)

	router.HandleFunc("/api/notifications", handler.GetNotifications).Methods("GET")
	router.HandleFunc("/api/notifications/read", handler.MarkNotificationsRead).Methods("POST")

	handlerChain := middleware.Chain(
		router,
		middleware.LoggingMiddleware,
		middleware.CORSMiddleware,
		middleware.AuthMiddleware(cfg),
	)

	// Starting the server
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	fmt.Printf("Сервер запущен на %s\n", addr)
	fmt.Printf("База данных: %s\n", cfg.DB.DbNAME)

	if err := http.ListenAndServe(addr, handlerChain); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
