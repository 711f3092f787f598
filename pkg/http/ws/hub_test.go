package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialPair returns the server side of a fresh connection and the client that dialed it.
func dialPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	serverSide := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverSide <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return <-serverSide, client
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(TypeSelectAnswer, SelectAnswerPayload{Index: 2})
	require.NoError(t, err)
	assert.Equal(t, TypeSelectAnswer, msg.Type)
	assert.JSONEq(t, `{"index":2}`, string(msg.Payload))

	empty, err := NewMessage(TypeStartRace, nil)
	require.NoError(t, err)
	assert.Nil(t, empty.Payload)

	_, err = NewMessage(TypeRaceTick, make(chan int))
	assert.Error(t, err)
}

func TestConnectionFlushesQueueBeforeClose(t *testing.T) {
	server, client := dialPair(t)
	conn := NewConnection(server, zerolog.Nop())

	msg, _ := NewMessage(TypePong, nil)
	require.NoError(t, conn.Send(msg))
	conn.Close()
	assert.ErrorIs(t, conn.Send(msg), ErrConnectionClosed)

	go conn.WritePump()

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Message
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, TypePong, got.Type)

	_, _, err := client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestConnectionQueueFull(t *testing.T) {
	server, _ := dialPair(t)
	conn := NewConnection(server, zerolog.Nop())

	msg, _ := NewMessage(TypePong, nil)
	for i := 0; i < sendQueueSize; i++ {
		require.NoError(t, conn.Send(msg))
	}
	assert.ErrorIs(t, conn.Send(msg), ErrSendQueueFull)
}

func TestHubRegisterReplacesAndUnregisters(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	id := uuid.New()

	firstServer, _ := dialPair(t)
	secondServer, _ := dialPair(t)
	first := NewConnection(firstServer, zerolog.Nop())
	second := NewConnection(secondServer, zerolog.Nop())

	hub.Register(id, first)
	hub.Register(id, second)
	assert.Equal(t, 1, hub.Count())

	msg, _ := NewMessage(TypePong, nil)
	assert.ErrorIs(t, first.Send(msg), ErrConnectionClosed)
	assert.NoError(t, hub.Send(id, msg))

	// A stale connection must not evict its replacement.
	hub.Unregister(id, first)
	assert.Equal(t, 1, hub.Count())

	hub.Unregister(id, second)
	assert.Equal(t, 0, hub.Count())
	assert.ErrorIs(t, hub.Send(id, msg), ErrConnectionNotFound)
}

func TestHubCloseAll(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	server, _ := dialPair(t)
	conn := NewConnection(server, zerolog.Nop())
	hub.Register(uuid.New(), conn)

	hub.CloseAll()
	assert.Equal(t, 0, hub.Count())
	msg, _ := NewMessage(TypePong, nil)
	assert.ErrorIs(t, conn.Send(msg), ErrConnectionClosed)
}
