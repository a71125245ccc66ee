package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients       map[string]map[*websocket.Conn]*Client // keyed by upload id
	GlobalClients map[*websocket.Conn]*Client
	Mutex         sync.RWMutex
}

var H = Hub{
	Clients:       make(map[string]map[*websocket.Conn]*Client),
	GlobalClients: make(map[*websocket.Conn]*Client),
}

// StudyStatusUpdate reports synthesis-pipeline progress for one upload.
type StudyStatusUpdate struct {
	UploadID  string  `json:"upload_id"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	SessionID string  `json:"session_id,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Register adds a watcher for one upload and starts its pumps. The read
// pump is the connection's only reader and unregisters on close; the write
// pump is its only writer.
func (h *Hub) Register(uploadID string, conn *websocket.Conn) *Client {
	h.Mutex.Lock()

	if _, ok := h.Clients[uploadID]; !ok {
		h.Clients[uploadID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Clients[uploadID][conn] = client
	h.Mutex.Unlock()

	go h.readPump(uploadID, conn)
	go h.writePump(client)
	return client
}

func (h *Hub) RegisterGlobal(conn *websocket.Conn) *Client {
	h.Mutex.Lock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.GlobalClients[conn] = client
	h.Mutex.Unlock()

	go h.readGlobalPump(conn)
	go h.writePump(client)
	return client
}

func (h *Hub) Broadcast(uploadID string, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[uploadID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

func (h *Hub) BroadcastGlobal(data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// GetStats reports connection counts for the health endpoint.
func (h *Hub) GetStats() map[string]int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	perUpload := 0
	for _, clients := range h.Clients {
		perUpload += len(clients)
	}
	return map[string]int{
		"upload_clients": perUpload,
		"global_clients": len(h.GlobalClients),
	}
}

// SendStudyStatus pushes one pipeline progress update to watchers of an
// upload.
func SendStudyStatus(uploadID, status string, progress float64, sessionID, errorMsg string) {
	update := StudyStatusUpdate{
		UploadID:  uploadID,
		Status:    status,
		Progress:  progress,
		SessionID: sessionID,
		Error:     errorMsg,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(uploadID, data)
}

// BroadcastVaultChanged signals list views that the session vault changed.
func BroadcastVaultChanged() {
	data := []byte(`{"type": "session_list_changed"}`)
	H.BroadcastGlobal(data)
}

func (h *Hub) Unregister(uploadID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[uploadID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, uploadID)
		}
	}
}

func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

func (h *Hub) readPump(uploadID string, conn *websocket.Conn) {
	defer h.Unregister(uploadID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(client *Client) {
	conn := client.Conn
	defer func() {
		conn.WriteMessage(websocket.CloseMessage, []byte{})
		conn.Close()
	}()
	for msg := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func (h *Hub) readGlobalPump(conn *websocket.Conn) {
	defer h.UnregisterGlobal(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
