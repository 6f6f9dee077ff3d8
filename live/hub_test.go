package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"servecart/cart"
	"servecart/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan []byte) Badge {
	t.Helper()
	select {
	case data, ok := <-ch:
		require.True(t, ok, "channel closed")
		var b Badge
		require.NoError(t, json.Unmarshal(data, &b))
		return b
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for badge")
	}
	return Badge{}
}

func TestHubRegisterPublishUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{Send: make(chan []byte, 10), Room: "s1"}
	other := &Client{Send: make(chan []byte, 10), Room: "s2"}
	require.True(t, hub.Register(client))
	require.True(t, hub.Register(other))

	hub.CartChanged("s1", cart.Event{Kind: cart.LineAdded, ItemCount: 3, Total: decimal.RequireFromString("300")})
	b := receive(t, client.Send)
	assert.Equal(t, Badge{Kind: cart.LineAdded, ItemCount: 3, Total: "300.00"}, b)
	assert.Empty(t, other.Send)

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.Clients("s1") == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	slow := &Client{Send: make(chan []byte), Room: "s1"}
	require.True(t, hub.Register(slow))
	hub.Publish("s1", []byte("{}"))

	assert.Eventually(t, func() bool { return hub.Clients("s1") == 0 }, time.Second, 10*time.Millisecond)
	hub.Unregister(slow)
}

func TestStopClosesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{Send: make(chan []byte, 1), Room: "s1"}
	require.True(t, hub.Register(c))
	hub.Stop()
	hub.Stop()

	select {
	case _, open := <-c.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("client not closed")
	}
	assert.False(t, hub.Register(&Client{Send: make(chan []byte), Room: "s1"}))
}

func TestServeCartStreamsBadges(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	store := cart.NewStore(time.Hour)
	store.OnChange(hub.CartChanged)
	session := store.Create()

	router := httprouter.New()
	router.GET("/ws/cart/:session", ServeCart(hub, store))
	srv := httptest.NewServer(router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws/cart/nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/cart/"+session, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var b Badge
	require.NoError(t, conn.ReadJSON(&b))
	assert.Equal(t, 0, b.ItemCount)
	assert.Equal(t, "0.00", b.Total)

	require.Eventually(t, func() bool { return hub.Clients(session) == 1 }, time.Second, 10*time.Millisecond)
	item := models.MenuItem{ID: "water", Name: "Water", BasePrice: decimal.NewFromInt(20), Available: true}
	require.NoError(t, store.Do(session, func(c *cart.Cart) error {
		_, err := c.Add(item, 2, "", nil)
		return err
	}))

	require.NoError(t, conn.ReadJSON(&b))
	assert.Equal(t, cart.LineAdded, b.Kind)
	assert.Equal(t, 2, b.ItemCount)
	assert.Equal(t, "40.00", b.Total)
}
