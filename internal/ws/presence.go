package ws

import "sync"

// Presence tracks, per room, who is currently joined and who is typing.
type Presence struct {
	mu      sync.RWMutex
	members map[uint]map[uint]UserInfo
	typing  map[uint]map[uint]bool
}

func NewPresence() *Presence {
	return &Presence{
		members: make(map[uint]map[uint]UserInfo),
		typing:  make(map[uint]map[uint]bool),
	}
}

// Join adds the user's summary to the room and returns the members that
// were already present. Rejoining only refreshes the summary.
func (p *Presence) Join(roomID uint, u UserInfo) (others []UserInfo, already bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	room, ok := p.members[roomID]
	if !ok {
		room = make(map[uint]UserInfo)
		p.members[roomID] = room
	}
	_, already = room[u.ID]
	for id, m := range room {
		if id != u.ID {
			others = append(others, m)
		}
	}
	room[u.ID] = u
	return others, already
}

// Leave removes the user from the room and clears any typing flag.
func (p *Presence) Leave(roomID, userID uint) (UserInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	room, ok := p.members[roomID]
	if !ok {
		return UserInfo{}, false
	}
	u, joined := room[userID]
	if !joined {
		return UserInfo{}, false
	}
	delete(room, userID)
	if len(room) == 0 {
		delete(p.members, roomID)
	}
	if t, ok := p.typing[roomID]; ok {
		delete(t, userID)
		if len(t) == 0 {
			delete(p.typing, roomID)
		}
	}
	return u, true
}

// Members returns a snapshot of the room's current members.
func (p *Presence) Members(roomID uint) []UserInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	room := p.members[roomID]
	out := make([]UserInfo, 0, len(room))
	for _, m := range room {
		out = append(out, m)
	}
	return out
}

// Online returns the number of users joined to the room.
func (p *Presence) Online(roomID uint) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members[roomID])
}

// UpdateRole rewrites the stored role in every room summary for the user.
func (p *Presence) UpdateRole(userID uint, newRole string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, room := range p.members {
		if u, ok := room[userID]; ok {
			u.Role = newRole
			room[userID] = u
		}
	}
}

// SetTyping records the user's typing flag for the room. The server
// stores the flag verbatim; debounce is the client's job.
func (p *Presence) SetTyping(roomID, userID uint, isTyping bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !isTyping {
		if t, ok := p.typing[roomID]; ok {
			delete(t, userID)
			if len(t) == 0 {
				delete(p.typing, roomID)
			}
		}
		return
	}
	t, ok := p.typing[roomID]
	if !ok {
		t = make(map[uint]bool)
		p.typing[roomID] = t
	}
	t[userID] = true
}

// TypingIn returns the ids of users currently marked typing in the room.
func (p *Presence) TypingIn(roomID uint) []uint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t := p.typing[roomID]
	out := make([]uint, 0, len(t))
	for id := range t {
		out = append(out, id)
	}
	return out
}
