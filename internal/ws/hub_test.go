package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testClient(h *Hub, venueID uuid.UUID) *Client {
	return &Client{hub: h, venueID: venueID, userID: uuid.New(), send: make(chan []byte, sendBuffer)}
}

func runHub(t *testing.T) (*Hub, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	return h, cancel, done
}

func TestHub_BroadcastIsPerVenue(t *testing.T) {
	h, cancel, done := runHub(t)
	moon, star := uuid.New(), uuid.New()
	a, b := testClient(h, moon), testClient(h, star)
	h.Register(a)
	h.Register(b)
	require.Eventually(t, func() bool { return h.ClientCount(moon) == 1 && h.ClientCount(star) == 1 }, time.Second, time.Millisecond)

	h.ScheduleUpdated(moon, "2026-11")

	select {
	case msg := <-a.send:
		var evt ScheduleUpdatedEvent
		require.NoError(t, json.Unmarshal(msg, &evt))
		assert.Equal(t, "schedule_updated", evt.Type)
		assert.Equal(t, moon, evt.VenueID)
		assert.Equal(t, "2026-11", evt.Month)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
	assert.Empty(t, b.send)

	cancel()
	<-done
	_, open := <-a.send
	assert.False(t, open)
	_, open = <-b.send
	assert.False(t, open)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, cancel, done := runHub(t)
	defer func() {
		cancel()
		<-done
	}()
	venueID := uuid.New()
	slow := testClient(h, venueID)
	h.Register(slow)
	require.Eventually(t, func() bool { return h.ClientCount(venueID) == 1 }, time.Second, time.Millisecond)

	for i := 0; i <= sendBuffer; i++ {
		h.Broadcast(venueID, []byte("x"))
	}
	require.Eventually(t, func() bool { return h.ClientCount(venueID) == 0 }, time.Second, time.Millisecond)
}

func TestHub_Unregister(t *testing.T) {
	h, cancel, done := runHub(t)
	venueID := uuid.New()
	c := testClient(h, venueID)
	h.Register(c)
	require.Eventually(t, func() bool { return h.ClientCount(venueID) == 1 }, time.Second, time.Millisecond)

	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ClientCount(venueID) == 0 }, time.Second, time.Millisecond)

	cancel()
	<-done
	// A stopped hub must not block late callers.
	h.Unregister(c)
	late := testClient(h, venueID)
	h.Register(late)
	_, open := <-late.send
	assert.False(t, open)
}

func TestHub_NilSafe(t *testing.T) {
	var h *Hub
	h.ScheduleUpdated(uuid.New(), "2026-11")
	h.Broadcast(uuid.New(), nil)
	assert.Zero(t, h.ClientCount(uuid.New()))
}

func TestHub_MemberRemovedClosesOnlyTheirSockets(t *testing.T) {
	h, cancel, done := runHub(t)
	defer func() {
		cancel()
		<-done
	}()
	moon, star := uuid.New(), uuid.New()
	leaving := testClient(h, moon)
	sameUserElsewhere := &Client{hub: h, venueID: star, userID: leaving.userID, send: make(chan []byte, sendBuffer)}
	staying := testClient(h, moon)
	h.Register(leaving)
	h.Register(sameUserElsewhere)
	h.Register(staying)
	require.Eventually(t, func() bool { return h.ClientCount(moon) == 2 && h.ClientCount(star) == 1 }, time.Second, time.Millisecond)

	h.MemberRemoved(moon, leaving.userID)
	require.Eventually(t, func() bool { return h.ClientCount(moon) == 1 }, time.Second, time.Millisecond)
	_, open := <-leaving.send
	assert.False(t, open)
	assert.Equal(t, 1, h.ClientCount(star))

	h.ScheduleUpdated(moon, "2026-11")
	select {
	case <-staying.send:
	case <-time.After(time.Second):
		t.Fatal("remaining member got no event")
	}
}

func TestHub_RegisterRacingShutdownClosesClient(t *testing.T) {
	for i := 0; i < 50; i++ {
		h, cancel, done := runHub(t)
		c := testClient(h, uuid.New())
		registered := make(chan struct{})
		go func() {
			h.Register(c)
			close(registered)
		}()
		cancel()
		<-done
		<-registered

		// Whether Run took it or Register gave up, send ends up closed.
		select {
		case _, open := <-c.send:
			assert.False(t, open)
		case <-time.After(time.Second):
			t.Fatal("client left open after hub stopped")
		}
	}
}

func TestHub_MemberRemovedAfterStop(t *testing.T) {
	h, cancel, done := runHub(t)
	cancel()
	<-done
	h.MemberRemoved(uuid.New(), uuid.New())
}
