package realtime_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quell-core-api/internal/infrastructure/realtime"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func allowAll(ctx context.Context, origin string) (bool, error) { return true, nil }

func dialHub(t *testing.T, hub *realtime.Hub, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(wsURL, header)
}

func waitForRoom(t *testing.T, hub *realtime.Hub, storeID string, size int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.RoomSize(storeID) != size {
		if time.Now().After(deadline) {
			t.Fatalf("room %s never reached %d sessions", storeID, size)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubDeliversEventsToJoinedRoom(t *testing.T) {
	var published []string
	hub := realtime.NewHub(allowAll, zerolog.Nop(), func(event string) {
		published = append(published, event)
	})

	conn, _, err := dialHub(t, hub, "")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"event": "join_store", "store": "store-1"}))
	waitForRoom(t, hub, "store-1", 1)

	hub.Publish("store-1", "conversation:new_message", map[string]string{"conversationId": "conv-1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event realtime.Event
	require.NoError(t, json.Unmarshal(raw, &event))
	require.Equal(t, "conversation:new_message", event.Event)
	require.Equal(t, "store-1", event.StoreID)
	require.Equal(t, []string{"conversation:new_message"}, published)
}

func TestHubScopesEventsToStoreRooms(t *testing.T) {
	hub := realtime.NewHub(allowAll, zerolog.Nop(), nil)

	conn, _, err := dialHub(t, hub, "")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"event": "join_store", "store": "store-1"}))
	waitForRoom(t, hub, "store-1", 1)

	// Another store's event must not reach this session.
	hub.Publish("store-2", "customer_ticket_created", nil)
	hub.Publish("store-1", "customer_ticket_updated", nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event realtime.Event
	require.NoError(t, json.Unmarshal(raw, &event))
	require.Equal(t, "customer_ticket_updated", event.Event)
}

func TestHubRejectsDisallowedOrigin(t *testing.T) {
	hub := realtime.NewHub(func(ctx context.Context, origin string) (bool, error) {
		return origin == "https://dashboard.quell.app", nil
	}, zerolog.Nop(), nil)

	_, resp, err := dialHub(t, hub, "https://evil.example.com")
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dialHub(t, hub, "https://dashboard.quell.app")
	require.NoError(t, err)
	conn.Close()
}

func TestHubPublishToEmptyRoomDoesNotBlock(t *testing.T) {
	hub := realtime.NewHub(allowAll, zerolog.Nop(), nil)

	done := make(chan struct{})
	go func() {
		hub.Publish("store-1", "conversation:read", nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on an empty room")
	}
	require.Equal(t, 0, hub.RoomSize("store-1"))
}

func TestHubDropsSessionOnDisconnect(t *testing.T) {
	hub := realtime.NewHub(allowAll, zerolog.Nop(), nil)

	conn, _, err := dialHub(t, hub, "")
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(map[string]string{"event": "join_store", "store": "store-1"}))
	waitForRoom(t, hub, "store-1", 1)

	conn.Close()
	waitForRoom(t, hub, "store-1", 0)
}
