package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/scribeflow/backend/internal/gamification"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// Broadcaster fans gamification notifications out to the connected UI
// surfaces (overlay, tray). New clients receive a full snapshot on
// connect; afterwards they see progress and unlock messages as events
// are persisted.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*client]bool
	engine  *gamification.Engine
}

func NewBroadcaster(engine *gamification.Engine) *Broadcaster {
	return &Broadcaster{
		clients: make(map[*client]bool),
		engine:  engine,
	}
}

func (b *Broadcaster) AddClient(conn *websocket.Conn) *client {
	c := newClient(conn)

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	data, err := b.engine.Data()
	if err != nil {
		log.Printf("snapshot load error: %v", err)
		return c
	}
	raw, _ := json.Marshal(WSMessage{
		Type:    MsgSnapshot,
		Payload: SnapshotPayload{Data: data},
	})

	select {
	case c.send <- raw:
	default:
		// Client too slow, drop the snapshot
	}

	return c
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

// Progress broadcasts the XP delta and resulting level after a persisted
// update.
func (b *Broadcaster) Progress(xpGained int, level gamification.LevelSystem, leveledUp bool) {
	b.broadcast(WSMessage{
		Type: MsgProgress,
		Payload: ProgressPayload{
			XPGained:  xpGained,
			Level:     level,
			LeveledUp: leveledUp,
		},
	})
}

// AchievementUnlocked broadcasts one unlock notification.
func (b *Broadcaster) AchievementUnlocked(a gamification.Achievement) {
	b.broadcast(WSMessage{
		Type: MsgAchievementUnlocked,
		Payload: AchievementUnlockedPayload{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			XPReward:    a.XPReward,
			Category:    string(a.Category),
		},
	})
}

// ResetNotice tells clients the aggregate was reset; a fresh snapshot
// follows so they can redraw from defaults.
func (b *Broadcaster) ResetNotice() {
	b.broadcast(WSMessage{Type: MsgReset, Payload: struct{}{}})
	if data, err := b.engine.Data(); err == nil {
		b.broadcast(WSMessage{Type: MsgSnapshot, Payload: SnapshotPayload{Data: data}})
	}
}

func (b *Broadcaster) broadcast(msg WSMessage) {
	raw, err := json.Marshal(msg)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- raw:
		default:
			// Client can't keep up, disconnect it
			log.Printf("ws client too slow, disconnecting")
			b.RemoveClient(c)
		}
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
