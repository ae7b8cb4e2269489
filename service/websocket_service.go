package service

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tieubaoca/pdfchat-be/types"
)

// WebSocketService pushes document processing status updates to every
// connected client, so the frontend does not have to poll.
type WebSocketService struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
}

func NewWebSocketService() *WebSocketService {
	return &WebSocketService{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

func (s *WebSocketService) HandleStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	s.register(conn)
	defer func() {
		s.unregister(conn)
		conn.Close()
	}()

	// Read loop keeps the connection alive and answers pings; clients
	// only receive on this socket otherwise.
	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		if string(p) == types.TypeWebsocketPing {
			pong := types.WebSocketResponse{Type: types.TypeWebsocketPong}
			if err := conn.WriteJSON(pong); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

// NotifyStatus broadcasts a processing status update to all clients.
// Connections that fail to write are dropped.
func (s *WebSocketService) NotifyStatus(status types.ProcessingDocumentStatus) {
	message := types.WebSocketResponse{
		Type:    types.TypeWebsocketProcessing,
		Payload: status,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(message); err != nil {
			log.Println("Write error, dropping client:", err)
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *WebSocketService) register(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[conn] = true
}

func (s *WebSocketService) unregister(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, conn)
}
