package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartstudy/smart-study-backend/utils"
)

func newWSServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := utils.GenerateToken("user-1")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/study/:id", HandleStudyWebSocket)
	r.GET("/ws/status", HandleGlobalWebSocket)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, token
}

func dialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, v))
}

func TestStudyStatusStream(t *testing.T) {
	srv, token := newWSServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/study/upload-1?token=" + token
	conn := dialWS(t, url)

	// The greeting travels through the same write pump as broadcasts.
	var greeting map[string]any
	readJSON(t, conn, &greeting)
	assert.Equal(t, "connected", greeting["type"])

	SendStudyStatus("upload-1", "extracting", 0.2, "", "")

	var update StudyStatusUpdate
	readJSON(t, conn, &update)
	assert.Equal(t, "upload-1", update.UploadID)
	assert.Equal(t, "extracting", update.Status)
	assert.Equal(t, 0.2, update.Progress)
}

func TestGlobalStream(t *testing.T) {
	srv, token := newWSServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/status?token=" + token
	conn := dialWS(t, url)

	var greeting map[string]any
	readJSON(t, conn, &greeting)
	assert.Equal(t, "connected", greeting["type"])

	BroadcastVaultChanged()

	var event map[string]any
	readJSON(t, conn, &event)
	assert.Equal(t, "session_list_changed", event["type"])
}

func TestStudyWebSocketRejectsMissingToken(t *testing.T) {
	srv, _ := newWSServer(t)

	resp, err := http.Get(srv.URL + "/ws/study/upload-1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
