package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/raidstone/wgevents/guard/entry"
)

func newTestClient(hub *Hub, actor string) *Client {
	return &Client{
		hub:   hub,
		actor: actor,
		send:  make(chan []byte, 256),
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.actors == nil {
		t.Error("Hub actors map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels are not initialized")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "actor-1")

	hub.registerClient(client)
	if hub.ClientCount("ACTOR-1") != 1 {
		t.Errorf("Expected 1 client, got %d", hub.ClientCount("actor-1"))
	}

	hub.unregisterClient(client)
	if _, exists := hub.actors["actor-1"]; exists {
		t.Error("Actor should have been cleaned up after last client unregistered")
	}

	// Unregistering twice must not close the channel again
	hub.unregisterClient(client)
}

func TestHubMultipleClients(t *testing.T) {
	hub := NewHub()
	client1 := newTestClient(hub, "actor-1")
	client2 := newTestClient(hub, "actor-1")

	hub.registerClient(client1)
	hub.registerClient(client2)
	if hub.ClientCount("actor-1") != 2 {
		t.Errorf("Expected 2 clients, got %d", hub.ClientCount("actor-1"))
	}

	hub.unregisterClient(client1)
	if !hub.actors["actor-1"][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()
	follower := newTestClient(hub, "actor-1")
	other := newTestClient(hub, "actor-2")
	watcher := newTestClient(hub, AllActors)
	hub.registerClient(follower)
	hub.registerClient(other)
	hub.registerClient(watcher)

	hub.broadcastMessage(&Message{Actor: "actor-1", Event: "region_entered", Data: "spawn"})

	message := receive(t, follower)
	if message.Actor != "actor-1" || message.Event != "region_entered" {
		t.Errorf("Unexpected message %+v", message)
	}
	if message := receive(t, watcher); message.Event != "region_entered" {
		t.Errorf("Expected watcher to receive event, got %+v", message)
	}
	select {
	case <-other.send:
		t.Error("Client following another actor should not receive the event")
	default:
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent(" Actor-1 ", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.Actor != "actor-1" {
			t.Errorf("Expected actor 'actor-1', got %s", message.Actor)
		}
		if message.Event != "custom-event" || message.Data != "test-data" {
			t.Errorf("Unexpected message %+v", message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message queued")
	}
}

func TestHubBroadcastEvent_QueueFull(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.BroadcastEvent("actor", "event", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastEvent blocked on a full queue")
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected %d queued messages, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestHubOnRegionEvent(t *testing.T) {
	hub := NewHub()
	actor := uuid.New()
	ev := entry.Event{Kind: entry.RegionEntered, Actor: actor, Movement: entry.MovementMove, Region: "spawn"}

	if !hub.OnRegionEvent(ev) {
		t.Error("Expected hub listener never to cancel")
	}

	message := <-hub.broadcast
	if message.Actor != actor.String() || message.Event != "region_entered" {
		t.Errorf("Unexpected message %+v", message)
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("actor"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?actor=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give some time for registration
	time.Sleep(50 * time.Millisecond)
	if hub.ClientCount("ws-test") != 1 {
		t.Errorf("Expected 1 client, got %d", hub.ClientCount("ws-test"))
	}

	conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount("ws-test") != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount("ws-test") != 0 {
		t.Error("Client should have been unregistered after WebSocket close")
	}
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("actor"))
	}))
	defer server.Close()

	actor := uuid.New()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?actor=" + actor.String()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give time for connection to establish
	time.Sleep(50 * time.Millisecond)

	hub.OnRegionEvent(entry.Event{Kind: entry.RegionLeft, Actor: actor, Movement: entry.MovementQuit, Region: "market"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message struct {
		Actor string      `json:"actor"`
		Event string      `json:"event"`
		Data  entry.Event `json:"data"`
	}
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.Event != "region_left" || message.Data.Region != "market" {
		t.Errorf("Unexpected message %+v", message)
	}
}
