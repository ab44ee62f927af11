package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterEnforcesPerUserLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register("u1", nil)
		require.NoError(t, err)
	}
	_, err := hub.Register("u1", nil)
	assert.ErrorIs(t, err, ErrUserFull)

	_, err = hub.Register("u2", nil)
	assert.NoError(t, err)
	assert.Equal(t, maxConnsPerUser+1, hub.Count())
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("u1", nil)
	require.NoError(t, err)

	hub.UnregisterClient(c, "test")
	hub.UnregisterClient(c, "test")
	assert.Equal(t, 0, hub.Count())

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()
	a, err := hub.Register("a", nil)
	require.NoError(t, err)
	b, err := hub.Register("b", nil)
	require.NoError(t, err)

	hub.BroadcastAll([]byte("hello"))

	assert.Equal(t, []byte("hello"), <-a.Send)
	assert.Equal(t, []byte("hello"), <-b.Send)
}

func TestClient_TrySendDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("slow", nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))
	assert.Len(t, c.Send, sendBuffer)
}

func TestHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("u1", nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	_, open := <-c.Send
	assert.False(t, open)

	_, err = hub.Register("u1", nil)
	assert.ErrorIs(t, err, ErrHubShutdown)
	// unregister after shutdown must not double close
	hub.UnregisterClient(c, "late")
}

func TestHub_StartWiringForwardsRedisEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hub := NewHub()
	notifier := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	c, err := hub.Register("viewer", nil)
	require.NoError(t, err)

	msg, err := EncodeEvent(EventPostCreated, map[string]string{"id": "p1"})
	require.NoError(t, err)
	require.NoError(t, notifier.PublishFeed(context.Background(), msg))

	var got []byte
	require.Eventually(t, func() bool {
		select {
		case got = <-c.Send:
			return true
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)

	var ev Event
	require.NoError(t, json.Unmarshal(got, &ev))
	assert.Equal(t, EventPostCreated, ev.Type)
	assert.JSONEq(t, `{"id":"p1"}`, string(ev.Payload))
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishFeed(context.Background(), []byte("x")))
	assert.NoError(t, n.StartFeedSubscriber(context.Background(), func([]byte) {}))
}
