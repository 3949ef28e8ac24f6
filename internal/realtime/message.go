package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message types. Inbound messages are dispatched on Type with an exhaustive
// switch; adding a case here is the only way to add a protocol message.
const (
	TypeWelcome          = "welcome"
	TypePing             = "ping"
	TypePong             = "pong"
	TypeJoinRoom         = "join_room"
	TypeRoomJoined       = "room_joined"
	TypeLeaveRoom        = "leave_room"
	TypeRoomLeft         = "room_left"
	TypeTournamentUpdate = "tournament_update"
	TypeChatMessage      = "chat_message"
	TypeTyping           = "typing"
	TypeUserCountUpdate  = "user_count_update"
	TypeTournamentStatus = "tournament_status"
	TypeSystemStats      = "system_stats"
	TypeNotification     = "notification"
	TypeAnnouncement     = "announcement"
	TypeError            = "error"
)

// Reserved room names.
const (
	RoomGeneral = "general"
	RoomChat    = "chat"
	RoomAdmin   = "admin"
)

// TournamentRoom is the room name for a tournament's live updates.
func TournamentRoom(id uint) string {
	return fmt.Sprintf("tournament_%d", id)
}

// Message is the wire envelope for every protocol message. The Type tag
// determines which of the optional fields are meaningful.
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`

	UserID   *uint  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`

	Room      string `json:"room,omitempty"`
	UserCount int    `json:"user_count,omitempty"`
	Count     int    `json:"count,omitempty"`

	TournamentID uint            `json:"tournament_id,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`

	Content string `json:"content,omitempty"`

	ActiveTournaments int64 `json:"active_tournaments,omitempty"`

	OnlineUsers int     `json:"online_users,omitempty"`
	CPUUsage    float64 `json:"cpu_usage,omitempty"`
	MemoryUsage float64 `json:"memory_usage,omitempty"`
	ActiveRooms int     `json:"active_rooms,omitempty"`

	Timestamp string `json:"timestamp,omitempty"`
}

// ChatMessage is one persisted chat-room entry.
type ChatMessage struct {
	Type      string `json:"type"`
	UserID    *uint  `json:"user_id,omitempty"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseMessage decodes an inbound payload. A decode failure is a protocol
// error, answered with an error message, never a disconnect.
func parseMessage(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func errorMessage(text string) *Message {
	return &Message{Type: TypeError, Message: text}
}

func pongMessage() *Message {
	return &Message{Type: TypePong, Timestamp: now()}
}

func userCountMessage(count int) *Message {
	return &Message{Type: TypeUserCountUpdate, Count: count, Timestamp: now()}
}

func welcomeMessage(userID *uint) *Message {
	return &Message{
		Type:      TypeWelcome,
		Message:   "Connected to ClutchZone real-time service",
		UserID:    userID,
		Timestamp: now(),
	}
}
