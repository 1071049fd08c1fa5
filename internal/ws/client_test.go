package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/bandhannova07/blinders-secure-chat/internal/role"
)

func TestClientEnqueueAfterShutdown(t *testing.T) {
	c := &Client{send: make(chan []byte, 1)}
	c.shutdown()
	c.shutdown()

	if c.enqueue([]byte("late")) {
		t.Error("enqueue after shutdown must report the frame dropped")
	}
	if _, ok := <-c.send; ok {
		t.Error("channel should be closed and empty")
	}
}

func TestClientEnqueueShutdownConcurrent(t *testing.T) {
	for i := 0; i < 200; i++ {
		c := &Client{send: make(chan []byte, 4)}
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.enqueue([]byte("frame"))
			}
		}()
		go func() {
			defer wg.Done()
			c.shutdown()
		}()
		wg.Wait()
	}
}

// Fan-out must never crash the process when a recipient disconnects
// mid-broadcast. Senders hammer a room while other members churn
// through connect/join/disconnect cycles.
func TestSendRacesDisconnect(t *testing.T) {
	h, f := newTestHub()
	f.addRoom(10, "Shield Operations", role.ShieldCircle)

	const senders = 4
	for i := 0; i < senders; i++ {
		f.addUser(fmt.Sprintf("tok-sender-%d", i), uint(100+i), fmt.Sprintf("sender%d", i), role.ShieldCircle)
	}
	f.addUser("tok-churn", 1, "churn", role.ShieldCircle)

	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := 0; i < senders; i++ {
		c := newTestClient(h)
		h.Authenticate(c, fmt.Sprintf("tok-sender-%d", i))
		h.Join(c, 10)
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					h.Send(c, 10, "ping", "")
					for len(c.send) > 0 {
						<-c.send
					}
				}
			}
		}(c)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			c := newTestClient(h)
			h.Authenticate(c, "tok-churn")
			h.Join(c, 10)
			h.Disconnect(c)
		}
		close(done)
	}()

	wg.Wait()
}
