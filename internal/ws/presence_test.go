package ws

import (
	"testing"

	"github.com/bandhannova07/blinders-secure-chat/internal/role"
)

func TestPresenceJoinReturnsOthers(t *testing.T) {
	p := NewPresence()
	alice := UserInfo{ID: 1, Username: "alice", Role: role.ShieldCircle}
	bob := UserInfo{ID: 2, Username: "bob", Role: role.President}

	others, already := p.Join(10, alice)
	if already {
		t.Error("first join reported as duplicate")
	}
	if len(others) != 0 {
		t.Errorf("first joiner sees %d others, want 0", len(others))
	}

	others, already = p.Join(10, bob)
	if already {
		t.Error("bob's first join reported as duplicate")
	}
	if len(others) != 1 || others[0].Username != "alice" {
		t.Errorf("others = %+v, want just alice", others)
	}

	if _, already = p.Join(10, bob); !already {
		t.Error("rejoin not reported as duplicate")
	}
	if p.Online(10) != 2 {
		t.Errorf("Online = %d, want 2", p.Online(10))
	}
}

func TestPresenceLeave(t *testing.T) {
	p := NewPresence()
	alice := UserInfo{ID: 1, Username: "alice", Role: role.ShieldCircle}
	p.Join(10, alice)
	p.SetTyping(10, 1, true)

	info, ok := p.Leave(10, 1)
	if !ok {
		t.Fatal("leave of a present member reported as no-op")
	}
	if info.Username != "alice" {
		t.Errorf("leave info = %+v", info)
	}
	if _, ok := p.Leave(10, 1); ok {
		t.Error("second leave must be a no-op")
	}
	if p.Online(10) != 0 {
		t.Errorf("Online = %d, want 0", p.Online(10))
	}
	if typing := p.TypingIn(10); len(typing) != 0 {
		t.Errorf("typing set not cleared on leave: %v", typing)
	}
}

func TestPresenceMembersIsSnapshot(t *testing.T) {
	p := NewPresence()
	p.Join(10, UserInfo{ID: 1, Username: "alice", Role: role.ShieldCircle})

	members := p.Members(10)
	if len(members) != 1 {
		t.Fatalf("Members = %+v", members)
	}
	members[0].Username = "mutated"

	if got := p.Members(10); got[0].Username != "alice" {
		t.Error("Members must return a copy, not internal state")
	}
}

func TestPresenceUpdateRole(t *testing.T) {
	p := NewPresence()
	p.Join(10, UserInfo{ID: 1, Username: "alice", Role: role.StudyCircle})
	p.Join(11, UserInfo{ID: 1, Username: "alice", Role: role.StudyCircle})

	p.UpdateRole(1, role.ShieldCircle)

	for _, roomID := range []uint{10, 11} {
		members := p.Members(roomID)
		if len(members) != 1 || members[0].Role != role.ShieldCircle {
			t.Errorf("room %d members after update = %+v", roomID, members)
		}
	}
}

func TestPresenceTyping(t *testing.T) {
	p := NewPresence()
	p.Join(10, UserInfo{ID: 1, Username: "alice", Role: role.ShieldCircle})
	p.Join(10, UserInfo{ID: 2, Username: "bob", Role: role.ShieldCircle})

	p.SetTyping(10, 1, true)
	p.SetTyping(10, 2, true)
	p.SetTyping(10, 2, false)

	typing := p.TypingIn(10)
	if len(typing) != 1 || typing[0] != 1 {
		t.Errorf("TypingIn = %v, want [1]", typing)
	}
}
