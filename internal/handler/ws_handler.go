package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"ssocieyt/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS проверяется на уровне middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS поднимает websocket-соединение. Браузерный WebSocket не умеет
// ставить заголовки, поэтому токен приходит в query-параметре
func (h *Handlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	user, err := h.AuthService.GetUserFromToken(token)
	if err != nil {
		WriteError(w, "Недействительный токен", http.StatusUnauthorized)
		return
	}

	chatID := r.URL.Query().Get("chatId")
	if chatID != "" {
		if err := h.ChatService.CanSubscribe(r.Context(), chatID, user.UserID); err != nil {
			WriteAppError(w, err)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ошибка при апгрейде websocket: %v", err)
		return
	}

	client := ws.NewClient(h.Hub, conn, user.UserID, chatID)
	h.Hub.Register <- client

	// при подписке на чат сразу отдаем текущий снимок сообщений
	if chatID != "" {
		if snapshot, err := h.ChatService.MessagesSnapshot(r.Context(), chatID); err == nil {
			client.Send <- snapshot
		}
	}

	go client.WritePump()
	go client.ReadPump()
}
