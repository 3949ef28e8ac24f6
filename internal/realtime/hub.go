package realtime

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Transport is a single client's duplex channel. The hub owns registered
// transports for their lifetime; the actual network conn is managed in the
// ws handler. A failed Send is treated as proof the connection is dead.
type Transport interface {
	Send(data []byte) error
	Close() error
}

// Conn is the hub's handle for one connected client.
type Conn struct {
	transport Transport

	userID      uint // 0 means anonymous
	homeRoom    string
	connectedAt time.Time

	// lastPing and rooms are guarded by the hub mutex.
	lastPing time.Time
	rooms    map[string]struct{}
}

// UserID returns the authenticated user id, or 0 for anonymous connections.
func (c *Conn) UserID() uint { return c.userID }

// ConnectedAt returns when the connection was registered.
func (c *Conn) ConnectedAt() time.Time { return c.connectedAt }

// MetricsRecorder receives hub state changes. Implemented by
// analytics.HubRecorder; a nil recorder disables metrics.
type MetricsRecorder interface {
	SetConnections(n int)
	SetRooms(n int)
	MessageIn(msgType string)
}

type noopRecorder struct{}

func (noopRecorder) SetConnections(int) {}

func (noopRecorder) SetRooms(int) {}

func (noopRecorder) MessageIn(string) {}

// Hub is the process-wide registry of live connections and room membership,
// plus the message relay. All index mutations happen under one mutex;
// network sends happen outside it.
type Hub struct {
	mu    sync.RWMutex
	conns map[*Conn]struct{}
	users map[uint]*Conn
	rooms map[string]map[*Conn]struct{}

	history ChatHistory
	metrics MetricsRecorder
	log     *zap.Logger
}

// NewHub creates an empty hub. history may be nil (an in-memory buffer is
// used), as may metrics and log.
func NewHub(history ChatHistory, metrics MetricsRecorder, log *zap.Logger) *Hub {
	if history == nil {
		history = NewMemoryHistory(ChatHistoryLimit)
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		conns:   make(map[*Conn]struct{}),
		users:   make(map[uint]*Conn),
		rooms:   make(map[string]map[*Conn]struct{}),
		history: history,
		metrics: metrics,
		log:     log,
	}
}

// Connect registers a transport, joins the optional home room, sends the
// welcome message and broadcasts the new online count. userID 0 means
// anonymous. A second connection for the same user replaces the routing
// entry without closing the earlier socket.
func (h *Hub) Connect(t Transport, userID uint, room string) *Conn {
	c := &Conn{
		transport:   t,
		userID:      userID,
		homeRoom:    room,
		connectedAt: time.Now(),
		lastPing:    time.Now(),
		rooms:       make(map[string]struct{}),
	}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	if userID != 0 {
		h.users[userID] = c
	}
	if room != "" {
		h.addToRoom(c, room)
	}
	total := len(h.conns)
	h.updateGauges()
	h.mu.Unlock()

	h.log.Info("websocket connected",
		zap.Uint("user_id", userID), zap.String("room", room), zap.Int("total", total))

	var id *uint
	if userID != 0 {
		id = &userID
	}
	h.SendToConn(c, welcomeMessage(id))
	h.broadcastUserCount()
	return c
}

// Disconnect removes the connection from every index and closes its
// transport. Idempotent; safe to call from fan-out cleanup.
func (h *Hub) Disconnect(c *Conn) {
	h.mu.Lock()
	if _, ok := h.conns[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c)
	if c.userID != 0 && h.users[c.userID] == c {
		delete(h.users, c.userID)
	}
	for room := range c.rooms {
		h.removeFromRoom(c, room)
	}
	total := len(h.conns)
	h.updateGauges()
	h.mu.Unlock()

	_ = c.transport.Close()
	h.log.Info("websocket disconnected",
		zap.Uint("user_id", c.userID), zap.String("room", c.homeRoom), zap.Int("total", total))

	h.broadcastUserCount()
}

// SendToConn delivers one message to one connection. Best effort: a
// transport failure disconnects the target and is otherwise swallowed.
func (h *Hub) SendToConn(c *Conn, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal message", zap.Error(err))
		return
	}
	h.sendRaw(c, data)
}

func (h *Hub) sendRaw(c *Conn, data []byte) {
	if err := c.transport.Send(data); err != nil {
		h.log.Warn("send failed, dropping connection",
			zap.Uint("user_id", c.userID), zap.Error(err))
		h.Disconnect(c)
	}
}

// SendToUser delivers a message to the user's registered connection, if any.
func (h *Hub) SendToUser(userID uint, msg *Message) {
	h.mu.RLock()
	c, ok := h.users[userID]
	h.mu.RUnlock()
	if ok {
		h.SendToConn(c, msg)
	}
}

// SendToRoom fans a message out to every room member except exclude.
func (h *Hub) SendToRoom(room string, msg *Message, exclude *Conn) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal message", zap.Error(err))
		return
	}
	h.fanOut(h.roomMembers(room), data, exclude)
}

// Broadcast fans a message out to every connection except exclude.
func (h *Hub) Broadcast(msg *Message, exclude *Conn) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("marshal message", zap.Error(err))
		return
	}
	h.fanOut(h.allConns(), data, exclude)
}

// fanOut sends outside the registry lock; members whose send fails are
// collected and disconnected after the pass so the membership set is never
// mutated while it is being iterated.
func (h *Hub) fanOut(targets []*Conn, data []byte, exclude *Conn) {
	var dead []*Conn
	for _, c := range targets {
		if c == exclude {
			continue
		}
		if err := c.transport.Send(data); err != nil {
			h.log.Warn("fan-out send failed",
				zap.Uint("user_id", c.userID), zap.Error(err))
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		h.Disconnect(c)
	}
}

// JoinRoom adds the connection to a room, creating the room on first join.
// Idempotent. Unregistered connections are ignored.
func (h *Hub) JoinRoom(c *Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c]; !ok {
		return
	}
	h.addToRoom(c, room)
	h.updateGauges()
}

// LeaveRoom removes the connection from a room, deleting the room when the
// last member leaves. Idempotent.
func (h *Hub) LeaveRoom(c *Conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoom(c, room)
	h.updateGauges()
}

// addToRoom and removeFromRoom require the hub mutex.
func (h *Hub) addToRoom(c *Conn, room string) {
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Conn]struct{})
	}
	h.rooms[room][c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) removeFromRoom(c *Conn, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// OnlineUserCount returns the number of live connections.
func (h *Hub) OnlineUserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// RoomCount returns the number of rooms with at least one member.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// RoomMemberCount returns the number of members in a room.
func (h *Hub) RoomMemberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// OnlineUserIDs returns the ids of all users with a registered connection.
func (h *Hub) OnlineUserIDs() []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]uint, 0, len(h.users))
	for id := range h.users {
		ids = append(ids, id)
	}
	return ids
}

// InRoom reports whether the connection is currently a member of room.
func (h *Hub) InRoom(c *Conn, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][c]
	return ok
}

// CloseAll drops every connection without broadcasting. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*Conn]struct{})
	h.users = make(map[uint]*Conn)
	h.rooms = make(map[string]map[*Conn]struct{})
	h.updateGauges()
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.transport.Close()
	}
}

// HandleMessage dispatches one inbound payload from a connection. Malformed
// input yields exactly one error reply and never closes the connection.
func (h *Hub) HandleMessage(c *Conn, raw []byte) {
	msg, err := parseMessage(raw)
	if err != nil {
		h.SendToConn(c, errorMessage("Invalid JSON format"))
		return
	}
	h.metrics.MessageIn(msg.Type)

	switch msg.Type {
	case TypePing:
		h.mu.Lock()
		if _, ok := h.conns[c]; ok {
			c.lastPing = time.Now()
		}
		h.mu.Unlock()
		h.SendToConn(c, pongMessage())

	case TypeJoinRoom:
		if msg.Room == "" {
			h.SendToConn(c, errorMessage("room is required"))
			return
		}
		h.JoinRoom(c, msg.Room)
		h.SendToConn(c, &Message{
			Type:      TypeRoomJoined,
			Room:      msg.Room,
			UserCount: h.RoomMemberCount(msg.Room),
		})

	case TypeLeaveRoom:
		if msg.Room == "" {
			h.SendToConn(c, errorMessage("room is required"))
			return
		}
		h.LeaveRoom(c, msg.Room)
		h.SendToConn(c, &Message{Type: TypeRoomLeft, Room: msg.Room})

	case TypeTournamentUpdate:
		if msg.TournamentID == 0 {
			h.SendToConn(c, errorMessage("tournament_id is required"))
			return
		}
		h.SendToRoom(TournamentRoom(msg.TournamentID), &Message{
			Type:         TypeTournamentUpdate,
			TournamentID: msg.TournamentID,
			Data:         msg.Data,
			Timestamp:    now(),
		}, c)

	case TypeChatMessage:
		h.handleChat(c, msg)

	case TypeTyping:
		if !h.InRoom(c, RoomChat) {
			h.SendToConn(c, errorMessage("join the chat room first"))
			return
		}
		h.SendToRoom(RoomChat, &Message{
			Type:      TypeTyping,
			UserID:    optionalID(c.userID),
			Username:  displayName(msg.Username),
			Timestamp: now(),
		}, c)

	default:
		h.SendToConn(c, errorMessage("Unknown message type: "+msg.Type))
	}
}

func (h *Hub) handleChat(c *Conn, msg *Message) {
	if !h.InRoom(c, RoomChat) {
		h.SendToConn(c, errorMessage("join the chat room first"))
		return
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return
	}

	chat := ChatMessage{
		Type:      TypeChatMessage,
		UserID:    optionalID(c.userID),
		Username:  displayName(msg.Username),
		Content:   content,
		Timestamp: now(),
	}

	data, err := json.Marshal(chat)
	if err != nil {
		h.log.Error("marshal chat message", zap.Error(err))
		return
	}
	h.fanOut(h.roomMembers(RoomChat), data, c)

	if err := h.history.Append(chat); err != nil {
		h.log.Error("append chat history", zap.Error(err))
	}
}

// SendTournamentUpdate relays an update to a tournament's room. Used by the
// HTTP layer when admins mutate tournament state.
func (h *Hub) SendTournamentUpdate(tournamentID uint, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.Error("marshal tournament update", zap.Error(err))
		return
	}
	h.SendToRoom(TournamentRoom(tournamentID), &Message{
		Type:         TypeTournamentUpdate,
		TournamentID: tournamentID,
		Data:         raw,
		Timestamp:    now(),
	}, nil)
}

// SendUserNotification delivers a notification to one user, if connected.
func (h *Hub) SendUserNotification(userID uint, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.Error("marshal notification", zap.Error(err))
		return
	}
	h.SendToUser(userID, &Message{Type: TypeNotification, Data: raw, Timestamp: now()})
}

// SendGlobalAnnouncement broadcasts an announcement to every connection.
func (h *Hub) SendGlobalAnnouncement(data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.Error("marshal announcement", zap.Error(err))
		return
	}
	h.Broadcast(&Message{Type: TypeAnnouncement, Data: raw, Timestamp: now()}, nil)
}

// History returns the chat history store.
func (h *Hub) History() ChatHistory {
	return h.history
}

func (h *Hub) broadcastUserCount() {
	h.Broadcast(userCountMessage(h.OnlineUserCount()), nil)
}

func (h *Hub) roomMembers(room string) []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := make([]*Conn, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	return members
}

func (h *Hub) allConns() []*Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	return conns
}

// updateGauges requires the hub mutex.
func (h *Hub) updateGauges() {
	h.metrics.SetConnections(len(h.conns))
	h.metrics.SetRooms(len(h.rooms))
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func displayName(username string) string {
	if username == "" {
		return "Anonymous"
	}
	return username
}
