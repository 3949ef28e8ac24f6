package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clutchzone-api/internal/database"
	"clutchzone-api/internal/models"
	"clutchzone-api/internal/realtime"
	"clutchzone-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func setupWSServer(t *testing.T) (*httptest.Server, *realtime.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	hub := realtime.NewHub(nil, nil, nil)
	ws := &WSHandler{Hub: hub, Store: database.TournamentStats{}}

	r := gin.New()
	r.GET("/api/ws/general", ws.General)
	r.GET("/api/ws/tournament/:id", ws.Tournament)
	r.GET("/api/ws/chat", ws.Chat)
	r.GET("/api/stats/realtime", ws.RealtimeStats)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.CloseAll)
	return srv, hub
}

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) realtime.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg realtime.Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

// readUntil skips messages until one of the wanted type arrives. Connection
// lifecycle events (user_count_update) interleave with everything else.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) realtime.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msg := readMessage(t, conn)
		if msg.Type == msgType {
			return msg
		}
	}
	t.Fatalf("no %s message within deadline", msgType)
	return realtime.Message{}
}

func TestWSGeneral_WelcomeAndPing(t *testing.T) {
	srv, _ := setupWSServer(t)
	conn := dialWS(t, srv, "/api/ws/general")

	welcome := readMessage(t, conn)
	require.Equal(t, "welcome", welcome.Type)
	require.Contains(t, welcome.Message, "ClutchZone")
	require.Nil(t, welcome.UserID) // anonymous

	require.NoError(t, conn.WriteJSON(gin.H{"type": "ping"}))
	pong := readUntil(t, conn, "pong")
	require.NotEmpty(t, pong.Timestamp)
}

func TestWSGeneral_AuthenticatedWelcome(t *testing.T) {
	srv, _ := setupWSServer(t)

	user, err := testutil.SeedUser(database.GetDB(), "walt", "walt@example.com", models.RolePlayer)
	require.NoError(t, err)

	conn := dialWS(t, srv, "/api/ws/general?token="+tokenFor(t, user))
	welcome := readMessage(t, conn)
	require.Equal(t, "welcome", welcome.Type)
	require.NotNil(t, welcome.UserID)
	require.Equal(t, user.ID, *welcome.UserID)
}

func TestWSGeneral_InvalidTokenDegradesToAnonymous(t *testing.T) {
	srv, _ := setupWSServer(t)

	conn := dialWS(t, srv, "/api/ws/general?token=not-a-jwt")
	welcome := readMessage(t, conn)
	require.Equal(t, "welcome", welcome.Type)
	require.Nil(t, welcome.UserID)
}

func TestWSGeneral_MalformedPayloadKeepsConnection(t *testing.T) {
	srv, _ := setupWSServer(t)
	conn := dialWS(t, srv, "/api/ws/general")
	readMessage(t, conn) // welcome

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	errMsg := readUntil(t, conn, "error")
	require.Equal(t, "Invalid JSON format", errMsg.Message)

	// Still alive afterwards.
	require.NoError(t, conn.WriteJSON(gin.H{"type": "ping"}))
	readUntil(t, conn, "pong")
}

func TestWSChat_RelayAndAuth(t *testing.T) {
	srv, _ := setupWSServer(t)

	user, err := testutil.SeedUser(database.GetDB(), "xena", "xena@example.com", models.RolePlayer)
	require.NoError(t, err)

	sender := dialWS(t, srv, "/api/ws/chat?token="+tokenFor(t, user))
	readMessage(t, sender) // welcome
	receiver := dialWS(t, srv, "/api/ws/chat")
	readMessage(t, receiver) // welcome

	require.NoError(t, sender.WriteJSON(gin.H{
		"type":     "chat_message",
		"username": "xena",
		"content":  "anyone up for customs?",
	}))

	relayed := readUntil(t, receiver, "chat_message")
	require.Equal(t, "anyone up for customs?", relayed.Content)
	require.Equal(t, "xena", relayed.Username)

	// The sender never sees its own message echoed; a ping round-trips first.
	require.NoError(t, sender.WriteJSON(gin.H{"type": "ping"}))
	msg := readUntil(t, sender, "pong")
	require.Equal(t, "pong", msg.Type)
}

func TestWSChat_InvalidTokenRefused(t *testing.T) {
	srv, _ := setupWSServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/chat?token=bogus"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err) // upgrade succeeds, then the server closes
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	require.Equal(t, closeAuthFailed, closeErr.Code)
}

func TestWSTournament_RoomScopedUpdates(t *testing.T) {
	srv, hub := setupWSServer(t)

	tour := seedTournament(t, models.StatusActive, 100)
	other := seedTournament(t, models.StatusActive, 100)

	inRoom := dialWS(t, srv, fmt.Sprintf("/api/ws/tournament/%d", tour.ID))
	readMessage(t, inRoom) // welcome
	elsewhere := dialWS(t, srv, fmt.Sprintf("/api/ws/tournament/%d", other.ID))
	readMessage(t, elsewhere) // welcome

	hub.SendTournamentUpdate(tour.ID, gin.H{"event": "tournament_started"})

	update := readUntil(t, inRoom, "tournament_update")
	require.Equal(t, tour.ID, update.TournamentID)

	// The other room sees nothing but its own lifecycle traffic.
	require.NoError(t, elsewhere.WriteJSON(gin.H{"type": "ping"}))
	msg := readUntil(t, elsewhere, "pong")
	require.Equal(t, "pong", msg.Type)
}

func TestWSTournament_UnknownIDRefused(t *testing.T) {
	srv, _ := setupWSServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/tournament/99999"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	require.Equal(t, closeTournamentUnknown, closeErr.Code)
}

func TestRealtimeStats(t *testing.T) {
	srv, _ := setupWSServer(t)
	seedTournament(t, models.StatusActive, 100)

	conn := dialWS(t, srv, "/api/ws/general")
	readMessage(t, conn) // welcome, proves registration completed

	resp, err := http.Get(srv.URL + "/api/stats/realtime")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats struct {
		OnlineUsers       int   `json:"online_users"`
		ActiveRooms       int   `json:"active_rooms"`
		ActiveTournaments int64 `json:"active_tournaments"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	require.Equal(t, 1, stats.OnlineUsers)
	require.Equal(t, 1, stats.ActiveRooms)
	require.Equal(t, int64(1), stats.ActiveTournaments)
}
