package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Event types pushed by the backend's order stream.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

// OrderEvent is one remote-origin order notification. Delivery is
// at-most-once: events published while the stream is down are not replayed.
type OrderEvent struct {
	Type    string          `json:"type"`
	Payload OrderEventOrder `json:"payload"`
}

// OrderEventOrder is the order snapshot carried by an event.
type OrderEventOrder struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Total       string `json:"total"`
	TableNumber string `json:"table_number,omitempty"`
	OrderType   string `json:"order_type,omitempty"`
}

// Subscription is a live order-event stream. Events is closed when the
// stream ends; Close tears the connection down and is safe to call twice.
type Subscription struct {
	Events <-chan OrderEvent

	conn   *websocket.Conn
	cancel context.CancelFunc
}

// Close terminates the subscription.
func (s *Subscription) Close() {
	s.cancel()
	s.conn.Close()
}

// Subscribe dials the backend's order-events websocket. The stream carries
// both created and updated events; the caller filters by Type. On read
// failure the channel is closed rather than reconnected, so the caller
// decides when (and whether) to re-subscribe.
func (c *Client) Subscribe(ctx context.Context) (*Subscription, error) {
	if !c.IsConfigured() {
		return nil, &Error{Op: "subscribe", Message: "gateway is not configured"}
	}

	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws/orders"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		e := &Error{Op: "subscribe", Message: err.Error()}
		if resp != nil {
			e.StatusCode = resp.StatusCode
		}
		return nil, e
	}

	subCtx, cancel := context.WithCancel(ctx)
	events := make(chan OrderEvent, 16)
	sub := &Subscription{Events: events, conn: conn, cancel: cancel}

	// ReadMessage only unblocks when the connection closes, so cancellation
	// has to close it.
	go func() {
		<-subCtx.Done()
		conn.Close()
	}()

	go func() {
		defer close(events)
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if subCtx.Err() == nil {
					c.logger.Warn("order event stream closed", "error", err)
				}
				return
			}
			var ev OrderEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				c.logger.Warn("discarding malformed order event", "error", err)
				continue
			}
			select {
			case events <- ev:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}
