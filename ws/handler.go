package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/smartstudy/smart-study-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // development only, restrict in production
	},
}

// sendJSON queues a message on the client's send channel; the write pump is
// the connection's only writer.
func sendJSON(client *Client, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	select {
	case client.Send <- msg:
	default:
	}
}

// HandleStudyWebSocket streams synthesis-pipeline status for one upload.
func HandleStudyWebSocket(c *gin.Context) {
	uploadID := c.Param("id")
	token := c.Query("token")

	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	log.Printf("Study WS connected: uploadID=%s, userID=%s\n", uploadID, claims.UserID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}

	// The hub's read pump owns the connection from here and unregisters
	// on close.
	client := H.Register(uploadID, conn)
	sendJSON(client, gin.H{"type": "connected", "message": "Connected to upload " + uploadID})
}

// HandleGlobalWebSocket streams vault-wide updates.
func HandleGlobalWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	log.Printf("Global WS connected: userID=%s\n", claims.UserID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}

	client := H.RegisterGlobal(conn)
	sendJSON(client, gin.H{"type": "connected", "message": "Connected to global WebSocket"})
}
