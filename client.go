package thetactl

import (
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	pingFrequency = time.Second * 10
	pingTimeout   = time.Second * 5
)

// ClientManager broadcasts console activity to a pool of websocket
// clients. All writes are funneled through a single channel, as writes
// to an underlying websocket can not happen concurrently.
type ClientManager struct {
	sync.Mutex
	output chan interface{}
	done   chan struct{}
	pool   map[string]*websocket.Conn
}

func (c *ClientManager) initialize() {
	c.Lock()
	defer c.Unlock()

	if c.pool == nil {
		c.pool = map[string]*websocket.Conn{}
	}

	if c.output == nil {
		c.output = make(chan interface{}, 1)
		c.done = make(chan struct{})

		go c.run(c.output, c.done)
	}
}

func (c *ClientManager) run(output <-chan interface{}, done <-chan struct{}) {
	ticker := time.NewTicker(pingFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case data := <-output:
			c.broadcast(data)
		case <-ticker.C:
			c.pingClients()
		}
	}
}

// AddClient adds a new client to this manager. The client is pinged
// immediately so dead connections are pruned early.
func (c *ClientManager) AddClient(conn *websocket.Conn) {
	c.initialize()

	c.Lock()
	defer c.Unlock()

	c.pool[uuid.NewString()] = conn
	c.ping(conn)
}

// BroadcastLine sends one line of console output to all clients.
func (c *ClientManager) BroadcastLine(line string) {
	c.initialize()
	c.output <- map[string]string{"output": line}
}

// BroadcastStatus sends a process state change to all clients.
func (c *ClientManager) BroadcastStatus(status string) {
	c.initialize()
	c.output <- map[string]string{"status": status}
}

// Close stops the broadcast loop and disconnects all clients.
func (c *ClientManager) Close() {
	c.Lock()
	defer c.Unlock()

	if c.done != nil {
		close(c.done)
		c.done = nil
	}

	for id, conn := range c.pool {
		conn.Close()
		delete(c.pool, id)
	}
}

func (c *ClientManager) broadcast(data interface{}) {
	c.Lock()
	defer c.Unlock()

	for id, conn := range c.pool {
		if err := conn.WriteJSON(data); err != nil {
			log.WithField("remoteAddr", conn.RemoteAddr()).Warn("client disconnected")
			conn.Close()
			delete(c.pool, id)
		}
	}
}

func (c *ClientManager) pingClients() {
	c.Lock()
	defer c.Unlock()

	for id, conn := range c.pool {
		if err := c.ping(conn); err != nil {
			delete(c.pool, id)
		}
	}
}

// ping must be called with the manager's lock held.
func (c *ClientManager) ping(conn *websocket.Conn) error {
	deadline := time.Now().Add(pingTimeout)

	if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
		log.WithField("remoteAddr", conn.RemoteAddr()).Warn("client failed ping")
		conn.Close()
		return err
	}

	return nil
}
