// Package realtime pushes named documents to connected websocket clients.
//
// Every successful write is published as a versioned document message. A newly
// connected client first receives the latest version of every document it may
// see, then the live stream. Versions are global and strictly increasing, so a
// client can discard any message older than what it already holds.
package realtime

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/kripanshu-singh/congkong-livescore/storage"
)

const (
	MessageDocument = "document"

	// DocLeaderboard is derived from scores and settings and only sent to admins.
	DocLeaderboard = storage.DocLeaderboard
	// DocScores carries one score record per key.
	DocScores = storage.DocScores

	RoleAdmin  = "admin"
	RoleJudge  = "judge"
	RoleViewer = "viewer"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

type Message struct {
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Key     string          `json:"key,omitempty"`
	Version uint64          `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// ID identifies the document a message belongs to.
func (m Message) ID() string {
	if m.Key == "" {
		return m.Name
	}
	return m.Name + "/" + m.Key
}

// Peer is the authenticated identity behind a connection.
type Peer struct {
	Role    string
	Subject string
}

// CanSee decides which documents a peer receives. Admins see everything, judges
// see only their own score records, and nobody but admins sees the leaderboard.
func (p Peer) CanSee(m Message) bool {
	if p.Role == RoleAdmin {
		return true
	}
	switch m.Name {
	case DocLeaderboard:
		return false
	case DocScores:
		return p.Role == RoleJudge && p.Subject != "" && strings.HasSuffix(m.Key, "_"+p.Subject)
	}
	return true
}

type client struct {
	id   string
	peer Peer
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	latest   map[string]Message
	version  uint64
	upgrader websocket.Upgrader

	// OnClientsChanged is called with the new client count after every connect and disconnect.
	OnClientsChanged func(int)
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		latest:  make(map[string]Message),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Publish stores doc as the latest version of (name, key) and fans it out.
// Clients whose buffers are full are disconnected; they resync from the snapshot on reconnect.
func (h *Hub) Publish(name, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		logging.Log.Errorf("REALTIME: failed to encode %s: %v", name, err)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.version++
	msg := Message{Type: MessageDocument, Name: name, Key: key, Version: h.version, Data: data}
	h.latest[msg.ID()] = msg

	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	dropped := false
	for id, c := range h.clients {
		if !c.peer.CanSee(msg) {
			continue
		}
		select {
		case c.send <- raw:
		default:
			logging.Log.Warnf("REALTIME: client %s is too slow, dropping", id)
			delete(h.clients, id)
			c.close()
			dropped = true
		}
	}
	if dropped {
		h.notifyLocked()
	}
	return nil
}

// Forget removes the retained copy of a document, e.g. after a full reset.
func (h *Hub) Forget(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, m := range h.latest {
		if m.Name == name {
			delete(h.latest, id)
		}
	}
}

// Version returns the last version handed out.
func (h *Hub) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// Snapshot returns the latest messages visible to peer, oldest first.
func (h *Hub) Snapshot(peer Peer) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshotLocked(peer)
}

func (h *Hub) snapshotLocked(peer Peer) []Message {
	out := make([]Message, 0, len(h.latest))
	for _, m := range h.latest {
		if peer.CanSee(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and streams documents to peer until the connection ends.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, peer Peer) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Log.Warnf("REALTIME: upgrade failed: %v", err)
		return err
	}

	c := h.register(conn, peer)
	logging.Log.Infof("REALTIME: client %s connected as %s", c.id, peer.Role)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) register(conn *websocket.Conn, peer Peer) *client {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := h.snapshotLocked(peer)
	c := &client{
		id:   uuid.NewString(),
		peer: peer,
		conn: conn,
		send: make(chan []byte, len(snapshot)+sendBuffer),
	}
	for _, m := range snapshot {
		raw, err := json.Marshal(m)
		if err != nil {
			continue
		}
		c.send <- raw
	}
	h.clients[c.id] = c
	h.notifyLocked()
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		c.close()
		h.notifyLocked()
	}
}

func (h *Hub) notifyLocked() {
	if h.OnClientsChanged != nil {
		h.OnClientsChanged(len(h.clients))
	}
}

// readPump only keeps the connection alive; clients write through the HTTP API.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		logging.Log.Infof("REALTIME: client %s disconnected", c.id)
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		delete(h.clients, id)
		c.close()
	}
	h.notifyLocked()
}
