package ws

import (
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bandhannova07/blinders-secure-chat/internal/metrics"
	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"

	"github.com/rs/zerolog/log"
)

const maxMessageRunes = 4000

// ErrNotFound is returned by store implementations when a looked-up
// entity does not exist.
var ErrNotFound = errors.New("not found")

// External collaborators; the hub never talks to the database directly.
type (
	// Authenticator resolves a connection token to a user snapshot.
	Authenticator interface {
		VerifySocketToken(token string) (*models.User, error)
	}

	// RoomStore looks up rooms and records activity.
	RoomStore interface {
		FindRoomByID(id uint) (*models.Room, error)
		TouchActivity(id uint) error
	}

	// MessageStore persists chat messages before they are broadcast.
	MessageStore interface {
		PersistMessage(m *models.Message) error
	}
)

// Hub coordinates every live connection: authentication, room
// membership, presence and message fan-out.
type Hub struct {
	auth     Authenticator
	rooms    RoomStore
	messages MessageStore

	registry *Registry
	presence *Presence

	// Serializes persist+broadcast per room so delivery order matches
	// persistence order within a room. A slow write stalls only its
	// own room's traffic.
	seqMu   sync.Mutex
	roomSeq map[uint]*sync.Mutex
}

func NewHub(auth Authenticator, rooms RoomStore, messages MessageStore) *Hub {
	return &Hub{
		auth:     auth,
		rooms:    rooms,
		messages: messages,
		registry: NewRegistry(),
		presence: NewPresence(),
		roomSeq:  make(map[uint]*sync.Mutex),
	}
}

func (h *Hub) roomLock(roomID uint) *sync.Mutex {
	h.seqMu.Lock()
	defer h.seqMu.Unlock()
	mu, ok := h.roomSeq[roomID]
	if !ok {
		mu = &sync.Mutex{}
		h.roomSeq[roomID] = mu
	}
	return mu
}

// Online reports how many users are currently joined to the room.
func (h *Hub) Online(roomID uint) int { return h.presence.Online(roomID) }

// OnlineUsers returns the public summaries of users joined to the room.
func (h *Hub) OnlineUsers(roomID uint) []UserInfo { return h.presence.Members(roomID) }

// UserOnline reports whether the user has a live connection.
func (h *Hub) UserOnline(userID uint) bool { return h.registry.ClientFor(userID) != nil }

// OnlineCount reports how many users hold a live connection.
func (h *Hub) OnlineCount() int { return h.registry.Online() }

// Authenticate verifies the token and binds the connection. A previous
// connection of the same user is superseded, told why, and closed.
func (h *Hub) Authenticate(c *Client, token string) {
	user, err := h.auth.VerifySocketToken(token)
	if err != nil {
		metrics.WsAuthFailures.Inc()
		c.enqueue(authErrorEvent(CodeAuthFailed, "authentication failed"))
		return
	}
	if user.IsBanned || !user.IsActive || user.Status != models.StatusApproved {
		metrics.WsAuthFailures.Inc()
		c.enqueue(authErrorEvent(CodeAuthFailed, "account is not allowed to connect"))
		return
	}

	info := UserInfo{ID: user.ID, Username: user.Username, Role: user.Role}
	if old := h.registry.Bind(info, c); old != nil {
		old.enqueue(authErrorEvent(CodeSessionReplaced, "signed in from another connection"))
		old.shutdown()
		log.Info().Uint("user_id", user.ID).Msg("previous connection superseded")
	}
	c.userID = user.ID
	c.enqueue(mustEvent(EventAuthenticated, AuthenticatedData{User: info}))
	log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("ws authenticated")
}

// Join admits the user into a room after the access guard passes.
// A denied join mutates nothing.
func (h *Hub) Join(c *Client, roomID uint) {
	info, ok := h.requireAuth(c)
	if !ok {
		return
	}
	room, ok := h.lookupRoom(c, roomID)
	if !ok {
		return
	}
	if reason := Authorize(info.Role, room); reason != DenyNone {
		c.enqueue(errorEvent(string(reason), reason.Message()))
		return
	}

	h.registry.RecordJoin(info.ID, roomID)
	others, already := h.presence.Join(roomID, info)

	ack := JoinedRoomData{RoomID: roomID, RoomName: room.Name, RoomIcon: role.Icon(room.Role), Members: others}
	c.enqueue(mustEvent(EventJoinedRoom, ack))

	if !already {
		frame := mustEvent(EventUserJoined, UserJoinedData{RoomID: roomID, UserID: info.ID, Username: info.Username, Role: info.Role})
		h.deliver(others, frame)
		log.Info().Uint("user_id", info.ID).Uint("room_id", roomID).Str("room", room.Name).Msg("joined room")
	}
}

// Leave is idempotent: leaving a room the user is not in emits nothing.
func (h *Hub) Leave(c *Client, roomID uint) {
	info, ok := h.requireAuth(c)
	if !ok {
		return
	}
	if !h.registry.RecordLeave(info.ID, roomID) {
		return
	}
	h.presence.Leave(roomID, info.ID)
	c.enqueue(mustEvent(EventLeftRoom, LeftRoomData{RoomID: roomID}))

	frame := mustEvent(EventUserLeft, UserLeftData{RoomID: roomID, UserID: info.ID, Username: info.Username})
	h.deliver(h.presence.Members(roomID), frame)
	log.Info().Uint("user_id", info.ID).Uint("room_id", roomID).Msg("left room")
}

// Send validates, persists and fans out one chat message. The message
// is saved before anything is broadcast; a persistence failure reaches
// only the sender.
func (h *Hub) Send(c *Client, roomID uint, content, messageType string) {
	info, ok := h.requireAuth(c)
	if !ok {
		return
	}
	// Validation happens before any external call.
	if content == "" || utf8.RuneCountInString(content) > maxMessageRunes {
		c.enqueue(errorEvent(CodeInvalidMessage, "message content must be 1-4000 characters"))
		return
	}
	switch messageType {
	case "":
		messageType = models.MessageText
	case models.MessageText, models.MessageFile, models.MessageImage:
	default:
		c.enqueue(errorEvent(CodeInvalidMessage, "unsupported message type"))
		return
	}

	room, ok := h.lookupRoom(c, roomID)
	if !ok {
		return
	}
	if reason := Authorize(info.Role, room); reason != DenyNone {
		c.enqueue(errorEvent(string(reason), reason.Message()))
		return
	}

	mu := h.roomLock(roomID)
	mu.Lock()
	defer mu.Unlock()

	msg := &models.Message{
		RoomID:      roomID,
		SenderID:    info.ID,
		Content:     content,
		MessageType: messageType,
		// Server-assigned timestamp; client clocks are not trusted.
		CreatedAt: time.Now(),
	}
	if err := h.messages.PersistMessage(msg); err != nil {
		log.Error().Err(err).Uint("room_id", roomID).Uint("sender_id", info.ID).Msg("persist message")
		c.enqueue(errorEvent(CodePersistenceFailed, "message could not be saved"))
		return
	}
	if err := h.rooms.TouchActivity(roomID); err != nil {
		// Best effort only; the message is already saved.
		log.Warn().Err(err).Uint("room_id", roomID).Msg("touch room activity")
	}
	metrics.WsMessagesTotal.Inc()

	frame := mustEvent(EventNewMessage, NewMessageData{
		ID:          msg.ID,
		RoomID:      roomID,
		Content:     msg.Content,
		Sender:      info,
		MessageType: msg.MessageType,
		Timestamp:   msg.CreatedAt,
		IsEncrypted: msg.IsEncrypted,
	})
	for _, m := range h.presence.Members(roomID) {
		// Send-time re-check: members whose role no longer clears the
		// room stay joined but stop receiving messages.
		if !role.CanAccess(m.Role, room.Role) {
			continue
		}
		if cl := h.registry.ClientFor(m.ID); cl != nil {
			if !cl.enqueue(frame) {
				log.Warn().Uint("user_id", m.ID).Uint("room_id", roomID).Msg("dropped frame for stalled peer")
			}
		}
	}
}

// Typing relays the typing flag to the room's other members.
func (h *Hub) Typing(c *Client, roomID uint, isTyping bool) {
	info, ok := h.requireAuth(c)
	if !ok {
		return
	}
	if !h.registry.Joined(info.ID, roomID) {
		return
	}
	h.presence.SetTyping(roomID, info.ID, isTyping)

	frame := mustEvent(EventUserTyping, UserTypingData{RoomID: roomID, UserID: info.ID, Username: info.Username, IsTyping: isTyping})
	for _, m := range h.presence.Members(roomID) {
		if m.ID == info.ID {
			continue
		}
		if cl := h.registry.ClientFor(m.ID); cl != nil {
			cl.enqueue(frame)
		}
	}
}

// Disconnect tears down all state for a closed connection and tells
// each room the user was in, exactly once per room.
func (h *Hub) Disconnect(c *Client) {
	c.shutdown()
	if c.userID == 0 {
		return
	}
	info, rooms, ok := h.registry.UnbindIf(c.userID, c)
	if !ok {
		return
	}
	for _, roomID := range rooms {
		h.presence.Leave(roomID, info.ID)
		frame := mustEvent(EventUserDisconnected, UserLeftData{RoomID: roomID, UserID: info.ID, Username: info.Username})
		h.deliver(h.presence.Members(roomID), frame)
	}
	log.Info().Uint("user_id", info.ID).Int("rooms", len(rooms)).Msg("ws disconnected")
}

// EvictUser force-closes a user's live connection after a ban or
// deactivation.
func (h *Hub) EvictUser(userID uint, reason string) {
	cl := h.registry.ClientFor(userID)
	if cl == nil {
		return
	}
	info, rooms, ok := h.registry.UnbindIf(userID, cl)
	if ok {
		for _, roomID := range rooms {
			h.presence.Leave(roomID, info.ID)
			frame := mustEvent(EventUserDisconnected, UserLeftData{RoomID: roomID, UserID: info.ID, Username: info.Username})
			h.deliver(h.presence.Members(roomID), frame)
		}
	}
	cl.enqueue(authErrorEvent(CodeAuthFailed, reason))
	cl.shutdown()
	log.Info().Uint("user_id", userID).Str("reason", reason).Msg("connection evicted")
}

// UpdateUserRole refreshes the live role snapshot after an admin role
// change.
func (h *Hub) UpdateUserRole(userID uint, newRole string) {
	if h.registry.UpdateRole(userID, newRole) {
		h.presence.UpdateRole(userID, newRole)
	}
}

// NotifyUser pushes an application event to the user's live
// connection, if any.
func (h *Hub) NotifyUser(userID uint, event string, data any) {
	if cl := h.registry.ClientFor(userID); cl != nil {
		cl.enqueue(mustEvent(event, data))
	}
}

// NotifyRole pushes an event to every connected user holding exactly r.
func (h *Hub) NotifyRole(r string, event string, data any) {
	frame := mustEvent(event, data)
	for _, cl := range h.registry.ClientsWithRole(r) {
		cl.enqueue(frame)
	}
}

func (h *Hub) requireAuth(c *Client) (UserInfo, bool) {
	if c.userID == 0 {
		c.enqueue(errorEvent(CodeNotAuthenticated, "not authenticated"))
		return UserInfo{}, false
	}
	info, ok := h.registry.InfoFor(c.userID)
	if !ok {
		// Session was evicted out from under this connection.
		c.enqueue(errorEvent(CodeNotAuthenticated, "not authenticated"))
		return UserInfo{}, false
	}
	return info, true
}

func (h *Hub) lookupRoom(c *Client, roomID uint) (*models.Room, bool) {
	room, err := h.rooms.FindRoomByID(roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.enqueue(errorEvent(CodeRoomNotFound, DenyRoomNotFound.Message()))
		} else {
			log.Error().Err(err).Uint("room_id", roomID).Msg("room lookup")
			c.enqueue(errorEvent(CodeLookupFailed, "room lookup failed"))
		}
		return nil, false
	}
	return room, true
}

// deliver fans a prebuilt frame out to the given members' connections.
func (h *Hub) deliver(members []UserInfo, frame []byte) {
	for _, m := range members {
		if cl := h.registry.ClientFor(m.ID); cl != nil {
			cl.enqueue(frame)
		}
	}
}
