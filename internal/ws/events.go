package ws

import (
	"encoding/json"
	"time"
)

// Inbound event names.
const (
	EventAuthenticate = "authenticate"
	EventJoinRoom     = "join-room"
	EventLeaveRoom    = "leave-room"
	EventSendMessage  = "send-message"
	EventTyping       = "typing"
)

// Outbound event names.
const (
	EventAuthenticated    = "authenticated"
	EventAuthError        = "auth-error"
	EventJoinedRoom       = "joined-room"
	EventLeftRoom         = "left-room"
	EventUserJoined       = "user-joined"
	EventUserLeft         = "user-left"
	EventUserDisconnected = "user-disconnected"
	EventNewMessage       = "new-message"
	EventUserTyping       = "user-typing"
	EventNotification     = "notification"
	EventNewJoinRequest   = "new-join-request"
	EventError            = "error"
)

// Error codes carried by error/auth-error payloads so clients can tell
// permanent failures from retryable ones.
const (
	CodeNotAuthenticated  = "not_authenticated"
	CodeAuthFailed        = "auth_failed"
	CodeSessionReplaced   = "session_replaced"
	CodeRoomNotFound      = "room_not_found"
	CodeRoomInactive      = "room_inactive"
	CodeInsufficientRole  = "insufficient_role"
	CodeInvalidMessage    = "invalid_message"
	CodeInvalidPayload    = "invalid_payload"
	CodePersistenceFailed = "persistence_failed"
	CodeLookupFailed      = "lookup_failed"
	CodeUnknownEvent      = "unknown_event"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UserInfo is the public summary of a connected user, captured at
// authentication time.
type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Inbound payloads.

type authenticateData struct {
	Token string `json:"token"`
}

type roomData struct {
	RoomID uint `json:"room_id"`
}

type sendMessageData struct {
	RoomID      uint   `json:"room_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

type typingData struct {
	RoomID   uint `json:"room_id"`
	IsTyping bool `json:"is_typing"`
}

// Outbound payloads, one concrete shape per event.

type AuthenticatedData struct {
	User UserInfo `json:"user"`
}

type ErrorData struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type JoinedRoomData struct {
	RoomID   uint   `json:"room_id"`
	RoomName string `json:"room_name"`
	RoomIcon string `json:"room_icon"`
	// Members already present, so the joiner can render the roster
	// without a follow-up request.
	Members []UserInfo `json:"members"`
}

type LeftRoomData struct {
	RoomID uint `json:"room_id"`
}

type UserJoinedData struct {
	RoomID   uint   `json:"room_id"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UserLeftData struct {
	RoomID   uint   `json:"room_id"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

type NewMessageData struct {
	ID          uint      `json:"id"`
	RoomID      uint      `json:"room_id"`
	Content     string    `json:"content"`
	Sender      UserInfo  `json:"sender"`
	MessageType string    `json:"message_type"`
	Timestamp   time.Time `json:"timestamp"`
	IsEncrypted bool      `json:"is_encrypted"`
}

type UserTypingData struct {
	RoomID   uint   `json:"room_id"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

// mustEvent marshals an outbound event. Payload shapes are closed
// structs, so a marshal failure is a programming error.
func mustEvent(event string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		panic("ws: marshal outbound event " + event + ": " + err.Error())
	}
	b, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		panic("ws: marshal envelope " + event + ": " + err.Error())
	}
	return b
}

func errorEvent(code, msg string) []byte {
	return mustEvent(EventError, ErrorData{Error: msg, Code: code})
}

func authErrorEvent(code, msg string) []byte {
	return mustEvent(EventAuthError, ErrorData{Error: msg, Code: code})
}
