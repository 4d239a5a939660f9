package ws

// Publisher - то, что нужно сервисам от хаба
type Publisher interface {
	PublishToChat(chatID string, message []byte)
	SendToUser(userID string, message []byte)
}

// Event - адресованное сообщение: либо всем подписчикам чата, либо всем
// соединениям пользователя
type Event struct {
	ChatID string
	UserID string
	Data   []byte
}

type Hub struct {
	Clients     map[*Client]bool
	ChatClients map[string]map[*Client]bool
	UserClients map[string]map[*Client]bool
	Register    chan *Client
	Unregister  chan *Client
	Events      chan Event
}

func NewHub() *Hub {
	return &Hub{
		Clients:     make(map[*Client]bool),
		ChatClients: make(map[string]map[*Client]bool),
		UserClients: make(map[string]map[*Client]bool),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		Events:      make(chan Event, 64),
	}
}

// Run владеет всеми map хаба; доступ только из этой горутины
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			if client.ChatID != "" {
				if h.ChatClients[client.ChatID] == nil {
					h.ChatClients[client.ChatID] = make(map[*Client]bool)
				}
				h.ChatClients[client.ChatID][client] = true
			}
			if client.UserID != "" {
				if h.UserClients[client.UserID] == nil {
					h.UserClients[client.UserID] = make(map[*Client]bool)
				}
				h.UserClients[client.UserID][client] = true
			}

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				h.removeClient(client)
			}

		case event := <-h.Events:
			if event.ChatID != "" {
				h.deliver(h.ChatClients[event.ChatID], event.Data)
			}
			if event.UserID != "" {
				h.deliver(h.UserClients[event.UserID], event.Data)
			}
		}
	}
}

func (h *Hub) deliver(clients map[*Client]bool, message []byte) {
	for client := range clients {
		select {
		case client.Send <- message:
		default:
			// slow consumer
			h.removeClient(client)
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	delete(h.Clients, client)
	close(client.Send)

	if clients, exists := h.ChatClients[client.ChatID]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.ChatClients, client.ChatID)
		}
	}
	if clients, exists := h.UserClients[client.UserID]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.UserClients, client.UserID)
		}
	}
}

func (h *Hub) PublishToChat(chatID string, message []byte) {
	h.Events <- Event{ChatID: chatID, Data: message}
}

func (h *Hub) SendToUser(userID string, message []byte) {
	h.Events <- Event{UserID: userID, Data: message}
}
