package ws

import (
	"testing"

	"github.com/bandhannova07/blinders-secure-chat/internal/role"
)

func TestRegistryBindSupersedes(t *testing.T) {
	r := NewRegistry()
	alice := UserInfo{ID: 1, Username: "alice", Role: role.ShieldCircle}
	c1 := &Client{send: make(chan []byte, 1)}
	c2 := &Client{send: make(chan []byte, 1)}

	if old := r.Bind(alice, c1); old != nil {
		t.Errorf("first bind returned superseded client %v", old)
	}
	if old := r.Bind(alice, c2); old != c1 {
		t.Errorf("rebind returned %v, want the first client", old)
	}
	if r.ClientFor(1) != c2 {
		t.Error("ClientFor must return the latest client")
	}
	if r.Online() != 1 {
		t.Errorf("Online() = %d, want 1", r.Online())
	}
}

func TestRegistryRoomsSurviveRebind(t *testing.T) {
	r := NewRegistry()
	alice := UserInfo{ID: 1, Username: "alice", Role: role.ShieldCircle}
	c1 := &Client{send: make(chan []byte, 1)}
	c2 := &Client{send: make(chan []byte, 1)}

	r.Bind(alice, c1)
	r.RecordJoin(1, 10)
	r.RecordJoin(1, 11)
	r.Bind(alice, c2)

	if !r.Joined(1, 10) || !r.Joined(1, 11) {
		t.Error("room membership must survive a rebind")
	}
	if rooms := r.RoomsFor(1); len(rooms) != 2 {
		t.Errorf("RoomsFor = %v, want two rooms", rooms)
	}
}

func TestRegistryUnbindIfGuardsSuccessor(t *testing.T) {
	r := NewRegistry()
	alice := UserInfo{ID: 1, Username: "alice", Role: role.ShieldCircle}
	c1 := &Client{send: make(chan []byte, 1)}
	c2 := &Client{send: make(chan []byte, 1)}

	r.Bind(alice, c1)
	r.Bind(alice, c2)

	if _, _, ok := r.UnbindIf(1, c1); ok {
		t.Error("stale client must not unbind the successor's session")
	}
	if r.ClientFor(1) != c2 {
		t.Error("session destroyed by stale unbind")
	}

	info, _, ok := r.UnbindIf(1, c2)
	if !ok {
		t.Fatal("current client should unbind")
	}
	if info.Username != "alice" {
		t.Errorf("unbind info = %+v", info)
	}
	if r.ClientFor(1) != nil {
		t.Error("session should be gone after unbind")
	}
}

func TestRegistryRecordJoinLeave(t *testing.T) {
	r := NewRegistry()
	r.Bind(UserInfo{ID: 1, Username: "alice", Role: role.ShieldCircle}, &Client{send: make(chan []byte, 1)})

	if already := r.RecordJoin(1, 10); already {
		t.Error("first join reported as duplicate")
	}
	if already := r.RecordJoin(1, 10); !already {
		t.Error("second join not reported as duplicate")
	}
	if was := r.RecordLeave(1, 10); !was {
		t.Error("leave of a joined room reported as no-op")
	}
	if was := r.RecordLeave(1, 10); was {
		t.Error("second leave must be a no-op")
	}
	if r.Joined(1, 10) {
		t.Error("Joined after leave")
	}
}

func TestRegistryUpdateRole(t *testing.T) {
	r := NewRegistry()
	r.Bind(UserInfo{ID: 1, Username: "alice", Role: role.ShieldCircle}, &Client{send: make(chan []byte, 1)})

	if !r.UpdateRole(1, role.TeamCore) {
		t.Fatal("UpdateRole on a bound user returned false")
	}
	info, ok := r.InfoFor(1)
	if !ok || info.Role != role.TeamCore {
		t.Errorf("InfoFor after update = %+v", info)
	}
	if r.UpdateRole(2, role.TeamCore) {
		t.Error("UpdateRole on an offline user returned true")
	}
}

func TestRegistryClientsWithRole(t *testing.T) {
	r := NewRegistry()
	p1 := &Client{send: make(chan []byte, 1)}
	p2 := &Client{send: make(chan []byte, 1)}
	r.Bind(UserInfo{ID: 1, Username: "president-LordBandhan", Role: role.President}, p1)
	r.Bind(UserInfo{ID: 2, Username: "vice", Role: role.VicePresident}, p2)
	r.Bind(UserInfo{ID: 3, Username: "alice", Role: role.ShieldCircle}, &Client{send: make(chan []byte, 1)})

	got := r.ClientsWithRole(role.President)
	if len(got) != 1 || got[0] != p1 {
		t.Errorf("ClientsWithRole(president) = %v, want just the president's client", got)
	}
	if got := r.ClientsWithRole(role.StudyCircle); len(got) != 0 {
		t.Errorf("ClientsWithRole(study-circle) = %v, want empty", got)
	}
}
