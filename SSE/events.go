package SSE

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Broadcaster fans store-change notifications out to connected SPA sessions.
// The payload is the store name, so the client reloads only that collection.
type Broadcaster struct {
	clients map[chan string]struct{}
	mu      sync.Mutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[chan string]struct{})}
}

func (b *Broadcaster) Subscribe() chan string {
	client := make(chan string, 4)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	return client
}

func (b *Broadcaster) Unsubscribe(client chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
	}
}

// Notify tells every connected client that a store changed. Clients that stop
// draining within a second are dropped.
func (b *Broadcaster) Notify(store string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		select {
		case client <- store:
		case <-time.After(1 * time.Second):
			delete(b.clients, client)
			close(client)
		}
	}
}

var Events = NewBroadcaster()

func StreamEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	client := Events.Subscribe()
	defer Events.Unsubscribe(client)

	fmt.Fprintf(c.Writer, "data: %s\n\n", "connected")
	c.Writer.Flush()

	for {
		select {
		case store, ok := <-client:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", store)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
