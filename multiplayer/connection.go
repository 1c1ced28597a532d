package multiplayer

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// connection wraps one client's socket with the write-side mutex gorilla's
// websocket.Conn requires for concurrent writers (grounded in the teacher's
// spreadsheet.Server, which serializes broadcast writes under Server.mu;
// here the mutex moves onto the connection itself since rooms, not one
// global server, own the broadcast fan-out).
type connection struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func newConnection(ws *websocket.Conn) *connection {
	return &connection{ws: ws}
}

// send writes msg as JSON, closing the socket on failure — mirroring
// spreadsheet.Server.broadcastAll's "write fails, drop the client" policy.
func (c *connection) send(msg any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.WriteJSON(msg); err != nil {
		log.Printf("multiplayer: write failed: %v", err)
		_ = c.ws.Close()
	}
}

func (c *connection) sendError(message string, fatal bool) {
	c.send(ErrorMessage{Type: TypeError, Error: message})
	if fatal {
		_ = c.ws.Close()
	}
}
