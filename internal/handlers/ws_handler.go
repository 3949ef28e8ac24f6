package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"clutchzone-api/internal/auth"
	"clutchzone-api/internal/logger"
	"clutchzone-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Application close codes, mirrored by the frontend client.
const (
	closeAuthFailed        = 4001
	closeTournamentUnknown = 4004
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 4096
)

// wsTransport implements realtime.Transport by wrapping a websocket
// connection. Gorilla connections do not allow concurrent writers, so all
// writes go through one mutex.
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (t *wsTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *wsTransport) Close() error {
	return t.conn.Close()
}

// writeControl sends a ping or close frame, honoring the write mutex.
func (t *wsTransport) writeControl(messageType int, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteControl(messageType, data, time.Now().Add(wsWriteWait))
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WSHandler serves the websocket endpoints and feeds connections into the
// realtime hub.
type WSHandler struct {
	Hub   *realtime.Hub
	Store realtime.TournamentReader
}

// General serves the main realtime connection.
// GET /api/ws/general
func (h *WSHandler) General(c *gin.Context) {
	userID := h.optionalAuth(c)
	h.serve(c, userID, realtime.RoomGeneral)
}

// Tournament serves a tournament's live-update room. Unknown tournament ids
// are refused after upgrade so the client sees a meaningful close code.
// GET /api/ws/tournament/:id
func (h *WSHandler) Tournament(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tournament ID"})
		return
	}
	userID := h.optionalAuth(c)

	exists, err := h.Store.TournamentExists(uint(id))
	if err != nil {
		logger.Error("tournament lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Tournament lookup failed"})
		return
	}
	if !exists {
		h.refuse(c, closeTournamentUnknown, "tournament not found")
		return
	}
	h.serve(c, userID, realtime.TournamentRoom(uint(id)))
}

// Chat serves the support chat room. Anonymous connections are allowed, but
// a token that is present and invalid is refused.
// GET /api/ws/chat
func (h *WSHandler) Chat(c *gin.Context) {
	var userID uint
	if token := c.Query("token"); token != "" {
		id, err := auth.VerifyToken(token)
		if err != nil {
			h.refuse(c, closeAuthFailed, "Authentication failed")
			return
		}
		userID = id
	}
	h.serve(c, userID, realtime.RoomChat)
}

// optionalAuth resolves the ?token= query param. Invalid tokens degrade to
// an anonymous connection rather than refusing the upgrade.
func (h *WSHandler) optionalAuth(c *gin.Context) uint {
	token := c.Query("token")
	if token == "" {
		return 0
	}
	userID, err := auth.VerifyToken(token)
	if err != nil {
		logger.Warn("websocket auth failed", zap.Error(err))
		return 0
	}
	return userID
}

// refuse upgrades the connection only to close it with an application code,
// so browser clients can distinguish refusal reasons.
func (h *WSHandler) refuse(c *gin.Context, code int, reason string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
	_ = conn.Close()
}

func (h *WSHandler) serve(c *gin.Context, userID uint, room string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}

	transport := &wsTransport{conn: conn}
	client := h.Hub.Connect(transport, userID, room)

	// Heartbeat: send periodic pings; close on error. This is independent of
	// the JSON-level ping the protocol also answers.
	pingTicker := time.NewTicker(wsPingPeriod)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				if err := transport.writeControl(websocket.PingMessage, []byte("ping")); err != nil {
					// ping failed; reader loop will exit on next error
					return
				}
			}
		}
	}()
	defer func() {
		close(done)
		pingTicker.Stop()
		h.Hub.Disconnect(client)
	}()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			// Normal close or error; exit loop
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		h.Hub.HandleMessage(client, raw)
	}
}

// RealtimeStats reports live platform counters over plain HTTP.
// GET /api/stats/realtime
func (h *WSHandler) RealtimeStats(c *gin.Context) {
	active, err := h.Store.ActiveTournamentCount()
	if err != nil {
		logger.Error("active tournament count failed", zap.Error(err))
		active = 0
	}
	c.JSON(http.StatusOK, gin.H{
		"online_users":       h.Hub.OnlineUserCount(),
		"active_rooms":       h.Hub.RoomCount(),
		"active_tournaments": active,
	})
}
