package sse

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-admin/internal/logger"
	"business-admin/internal/model"
)

func receive(t *testing.T, ch chan []byte) map[string]interface{} {
	t.Helper()
	select {
	case msg := <-ch:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("Did not receive message within timeout")
		return nil
	}
}

func TestSSEManager(t *testing.T) {
	manager := NewSSEManager(logger.NewWithWriter(io.Discard))
	defer manager.Close()

	userID := "test_user_123"
	clientChannel := manager.AddClient(userID)
	assert.Equal(t, 1, manager.GetUserConnectionCount(userID))
	assert.True(t, manager.HasUserConnection(userID))

	email := model.NewEmail(userID, "msg_123", "sender@example.com", "Test Subject", "Test body", time.Now())
	manager.BroadcastEmailToUser(userID, email)

	event := receive(t, clientChannel)
	assert.Equal(t, EventNewEmail, event["type"])
	assert.Equal(t, email.ID, event["data"].(map[string]interface{})["id"])

	manager.RemoveClient(userID, clientChannel)
	assert.Equal(t, 0, manager.GetUserConnectionCount(userID))
	assert.False(t, manager.HasUserConnection(userID))

	// removing twice must not close the channel again
	manager.RemoveClient(userID, clientChannel)
}

func TestBroadcastReachesEveryUser(t *testing.T) {
	manager := NewSSEManager(logger.NewWithWriter(io.Discard))
	defer manager.Close()

	a := manager.AddClient("a")
	b := manager.AddClient("b")

	manager.BroadcastToUser("a", "only_a", 1)
	assert.Equal(t, "only_a", receive(t, a)["type"])
	select {
	case <-b:
		t.Fatal("user b should not receive user a's event")
	default:
	}

	manager.Broadcast(EventReminders, map[string]int{"count": 2})
	assert.Equal(t, EventReminders, receive(t, a)["type"])
	assert.Equal(t, EventReminders, receive(t, b)["type"])
}

func TestSlowClientDoesNotBlock(t *testing.T) {
	manager := NewSSEManager(logger.NewWithWriter(io.Discard))
	defer manager.Close()

	ch := manager.AddClient("slow")
	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuffer*2; i++ {
			manager.BroadcastToUser("slow", "tick", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client buffer")
	}
	assert.Len(t, ch, clientBuffer)
}

func TestCloseEndsStreams(t *testing.T) {
	manager := NewSSEManager(logger.NewWithWriter(io.Discard))
	ch := manager.AddClient("u")
	manager.Close()

	_, open := <-ch
	assert.False(t, open)

	late := manager.AddClient("u")
	_, open = <-late
	assert.False(t, open)
}
