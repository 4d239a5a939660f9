package ws

import "github.com/gorilla/websocket"

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
	ChatID string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, chatID string) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		UserID: userID,
		ChatID: chatID,
	}
}

// ReadPump только следит за закрытием соединения: клиенты ничего не шлют,
// все мутации идут через HTTP API
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	defer c.Conn.Close()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}
