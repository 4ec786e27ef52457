package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scribeflow/backend/internal/gamification"
)

// dialTestWS creates a test HTTP server that upgrades to WebSocket and
// returns both ends of the connection. The caller must close the server;
// the client side stays open so tests can read broadcast frames.
func dialTestWS(t *testing.T) (*httptest.Server, *websocket.Conn, *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- c
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}

	select {
	case serverConn := <-connCh:
		return srv, serverConn, clientConn
	case <-time.After(2 * time.Second):
		srv.Close()
		t.Fatal("timed out waiting for server-side WebSocket connection")
		return nil, nil, nil
	}
}

func newTestEngine(t *testing.T) *gamification.Engine {
	t.Helper()
	return gamification.NewEngine(gamification.NewStore(t.TempDir()))
}

// readMessage reads one frame from the client side and decodes the
// envelope.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return msg
}

func TestAddClient_SendsSnapshot(t *testing.T) {
	srv, serverConn, clientConn := dialTestWS(t)
	defer srv.Close()
	defer clientConn.Close()

	b := NewBroadcaster(newTestEngine(t))
	c := b.AddClient(serverConn)
	defer b.RemoveClient(c)

	msg := readMessage(t, clientConn)
	if msg.Type != MsgSnapshot {
		t.Fatalf("first message type = %q, want %q", msg.Type, MsgSnapshot)
	}
	if b.ClientCount() != 1 {
		t.Errorf("ClientCount = %d, want 1", b.ClientCount())
	}
}

func TestProgress_ReachesConnectedClient(t *testing.T) {
	srv, serverConn, clientConn := dialTestWS(t)
	defer srv.Close()
	defer clientConn.Close()

	b := NewBroadcaster(newTestEngine(t))
	c := b.AddClient(serverConn)
	defer b.RemoveClient(c)

	// Drain the connect snapshot first.
	if msg := readMessage(t, clientConn); msg.Type != MsgSnapshot {
		t.Fatalf("expected snapshot, got %q", msg.Type)
	}

	b.Progress(185, gamification.LevelSystemFromXP(185), true)

	msg := readMessage(t, clientConn)
	if msg.Type != MsgProgress {
		t.Fatalf("message type = %q, want %q", msg.Type, MsgProgress)
	}

	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		t.Fatalf("re-marshal payload: %v", err)
	}
	var progress ProgressPayload
	if err := json.Unmarshal(payload, &progress); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if progress.XPGained != 185 {
		t.Errorf("XPGained = %d, want 185", progress.XPGained)
	}
	if !progress.LeveledUp {
		t.Error("LeveledUp should be true")
	}
	if progress.Level.Level != 2 {
		t.Errorf("Level = %d, want 2", progress.Level.Level)
	}
}

func TestAchievementUnlocked_PayloadFields(t *testing.T) {
	srv, serverConn, clientConn := dialTestWS(t)
	defer srv.Close()
	defer clientConn.Close()

	b := NewBroadcaster(newTestEngine(t))
	c := b.AddClient(serverConn)
	defer b.RemoveClient(c)

	readMessage(t, clientConn) // snapshot

	a, ok := gamification.AchievementByID("first-steps")
	if !ok {
		t.Fatal("first-steps missing from catalog")
	}
	b.AchievementUnlocked(a)

	msg := readMessage(t, clientConn)
	if msg.Type != MsgAchievementUnlocked {
		t.Fatalf("message type = %q, want %q", msg.Type, MsgAchievementUnlocked)
	}

	payload, _ := json.Marshal(msg.Payload)
	var unlock AchievementUnlockedPayload
	if err := json.Unmarshal(payload, &unlock); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if unlock.ID != "first-steps" {
		t.Errorf("ID = %q, want first-steps", unlock.ID)
	}
	if unlock.XPReward != a.XPReward {
		t.Errorf("XPReward = %d, want %d", unlock.XPReward, a.XPReward)
	}
}

func TestRemoveClient_Idempotent(t *testing.T) {
	srv, serverConn, clientConn := dialTestWS(t)
	defer srv.Close()
	defer clientConn.Close()

	b := NewBroadcaster(newTestEngine(t))
	c := b.AddClient(serverConn)

	b.RemoveClient(c)
	if b.ClientCount() != 0 {
		t.Fatalf("ClientCount after remove = %d, want 0", b.ClientCount())
	}

	// Second remove must not panic (double close of the send channel).
	b.RemoveClient(c)
}

func TestBroadcast_DisconnectsSlowClient(t *testing.T) {
	srv, serverConn, clientConn := dialTestWS(t)
	defer srv.Close()
	defer clientConn.Close()

	b := NewBroadcaster(newTestEngine(t))

	// Build the client by hand with no writePump draining it, so the
	// buffered send channel fills up.
	c := &client{
		conn: serverConn,
		send: make(chan []byte, 1),
	}
	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	level := gamification.LevelSystemFromXP(0)
	b.Progress(10, level, false) // fills the buffer
	b.Progress(10, level, false) // overflows, client dropped

	if got := b.ClientCount(); got != 0 {
		t.Fatalf("slow client not disconnected; ClientCount = %d", got)
	}
}

func TestResetNotice_SendsResetThenSnapshot(t *testing.T) {
	srv, serverConn, clientConn := dialTestWS(t)
	defer srv.Close()
	defer clientConn.Close()

	b := NewBroadcaster(newTestEngine(t))
	c := b.AddClient(serverConn)
	defer b.RemoveClient(c)

	readMessage(t, clientConn) // connect snapshot

	b.ResetNotice()

	if msg := readMessage(t, clientConn); msg.Type != MsgReset {
		t.Fatalf("first message = %q, want %q", msg.Type, MsgReset)
	}
	if msg := readMessage(t, clientConn); msg.Type != MsgSnapshot {
		t.Fatalf("second message = %q, want %q", msg.Type, MsgSnapshot)
	}
}
