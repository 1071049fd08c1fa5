package ws

import "sync"

// Registry is the in-memory session index: which connection a user is
// bound to and which rooms they have joined.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uint]*session
}

type session struct {
	client *Client
	user   UserInfo
	rooms  map[uint]struct{}
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uint]*session)}
}

// Bind associates a user with a connection, returning the superseded
// connection if one existed (last bind wins). The room set survives a
// rebind: membership belongs to the user, not the socket.
func (r *Registry) Bind(user UserInfo, c *Client) (superseded *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[user.ID]; ok {
		if s.client != c {
			superseded = s.client
		}
		s.client = c
		s.user = user
		return superseded
	}
	r.sessions[user.ID] = &session{client: c, user: user, rooms: make(map[uint]struct{})}
	return nil
}

// UnbindIf removes the user's session only when it is still bound to c,
// so a superseded connection cannot tear down its successor.
func (r *Registry) UnbindIf(userID uint, c *Client) (UserInfo, []uint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok || s.client != c {
		return UserInfo{}, nil, false
	}
	rooms := make([]uint, 0, len(s.rooms))
	for id := range s.rooms {
		rooms = append(rooms, id)
	}
	delete(r.sessions, userID)
	return s.user, rooms, true
}

// RecordJoin adds roomID to the user's room set. Reports false when the
// user was already joined.
func (r *Registry) RecordJoin(userID, roomID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	if _, joined := s.rooms[roomID]; joined {
		return false
	}
	s.rooms[roomID] = struct{}{}
	return true
}

// RecordLeave removes roomID from the user's room set. Reports whether
// the user had been joined; leaving twice is a no-op.
func (r *Registry) RecordLeave(userID, roomID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	if _, joined := s.rooms[roomID]; !joined {
		return false
	}
	delete(s.rooms, roomID)
	return true
}

// Joined reports whether the user currently has an active join for roomID.
func (r *Registry) Joined(userID, roomID uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	_, joined := s.rooms[roomID]
	return joined
}

// RoomsFor returns the rooms the user has joined, empty for unknown users.
func (r *Registry) RoomsFor(userID uint) []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[userID]
	if !ok {
		return nil
	}
	rooms := make([]uint, 0, len(s.rooms))
	for id := range s.rooms {
		rooms = append(rooms, id)
	}
	return rooms
}

// ClientFor returns the connection currently bound to the user, or nil.
func (r *Registry) ClientFor(userID uint) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[userID]; ok {
		return s.client
	}
	return nil
}

// InfoFor returns the authentication-time snapshot for the user.
func (r *Registry) InfoFor(userID uint) (UserInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[userID]; ok {
		return s.user, true
	}
	return UserInfo{}, false
}

// UpdateRole refreshes the stored role snapshot for a bound user.
func (r *Registry) UpdateRole(userID uint, newRole string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	s.user.Role = newRole
	return true
}

// ClientsWithRole returns the connections of every bound user holding
// exactly the given role.
func (r *Registry) ClientsWithRole(role string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Client
	for _, s := range r.sessions {
		if s.user.Role == role {
			out = append(out, s.client)
		}
	}
	return out
}

// Online reports how many users are currently bound.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
