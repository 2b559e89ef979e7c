package ws

import (
	"encoding/json"
	"testing"
	"time"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		role: "kitchen",
		send: make(chan []byte, 256),
	}
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)

	// Register client
	hub.register <- client

	// Give hub time to process
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if !hub.clients[client] {
		t.Fatal("client not registered")
	}
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)

	// Register client
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	// Unregister client
	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if hub.clients[client] {
		t.Fatal("client still registered after unregister")
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client1 := mockClient(hub)
	client2 := mockClient(hub)
	client3 := mockClient(hub)

	// Register all clients
	hub.register <- client1
	hub.register <- client2
	hub.register <- client3
	time.Sleep(10 * time.Millisecond)

	// Broadcast event
	testPayload := json.RawMessage(`{"status":"ready"}`)
	event := Event{
		Type:    EventOrderUpdated,
		Payload: testPayload,
	}
	hub.Broadcast(event)

	// All three clients should receive the message
	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case msg := <-client.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != EventOrderUpdated {
				t.Errorf("client%d: expected type %q, got %q", i+1, EventOrderUpdated, received.Type)
			}
			if string(received.Payload) != string(testPayload) {
				t.Errorf("client%d: expected payload %s, got %s", i+1, testPayload, received.Payload)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}
}

func TestUnregisteredClientReceivesNothing(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	event := Event{
		Type:    EventOrderQueued,
		Payload: json.RawMessage(`{"id":"abc"}`),
	}
	hub.Broadcast(event)

	select {
	case msg, ok := <-client.send:
		if ok {
			t.Fatalf("unregistered client received message: %s", msg)
		}
		// Channel closed by unregister - expected
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent(EventOrderSynced, map[string]string{"id": "abc", "remote_id": "r-1"})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if event.Type != EventOrderSynced {
		t.Errorf("type: got %q, want %q", event.Type, EventOrderSynced)
	}

	var payload map[string]string
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload["remote_id"] != "r-1" {
		t.Errorf("payload remote_id: got %q, want %q", payload["remote_id"], "r-1")
	}
}

func TestEventSerialization(t *testing.T) {
	testCases := []struct {
		name  string
		event Event
	}{
		{
			name: "order queued event",
			event: Event{
				Type:    EventOrderQueued,
				Payload: json.RawMessage(`{"id":"abc","total":"25.00"}`),
			},
		},
		{
			name: "order synced event",
			event: Event{
				Type:    EventOrderSynced,
				Payload: json.RawMessage(`{"id":"def","remote_id":"r-9"}`),
			},
		},
		{
			name: "order updated event",
			event: Event{
				Type:    EventOrderUpdated,
				Payload: json.RawMessage(`{"id":"ghi","status":"preparing"}`),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.event)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}

			var decoded Event
			if err := json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}

			if decoded.Type != tc.event.Type {
				t.Errorf("Type mismatch: got %s, want %s", decoded.Type, tc.event.Type)
			}
			if string(decoded.Payload) != string(tc.event.Payload) {
				t.Errorf("Payload mismatch: got %s, want %s", decoded.Payload, tc.event.Payload)
			}
		})
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{hub: hub, role: "kitchen", send: make(chan []byte)}
	hub.register <- slow
	time.Sleep(10 * time.Millisecond)

	// Nobody drains slow.send, so the first broadcast cannot be delivered
	// and the hub must evict the client instead of blocking.
	hub.Broadcast(Event{Type: EventOrderQueued, Payload: json.RawMessage(`{}`)})
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.clients[slow] {
		t.Fatal("slow client should have been dropped")
	}
}
