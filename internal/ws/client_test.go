package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"mypetsvoice/backend/internal/prompt"
	"mypetsvoice/backend/internal/session"
	"mypetsvoice/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodedEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// newTestClient wires a client to a real store, hub and pool but no network
// connection; events are read straight off the send channel
func newTestClient(t *testing.T, gen *blockingGenerator) (*Client, session.Store) {
	t.Helper()
	log := logger.New(logger.Config{Level: "error"})
	store := session.NewMemoryStore()
	pool := NewPool(1, 4, gen, log)
	pool.Start()
	t.Cleanup(pool.Stop)

	hub := NewHub(store, pool, log)
	go hub.Run()

	require.NoError(t, store.BindPersona(context.Background(), "sid-1", prompt.PetProfile{Name: "Momo", Species: "Cat"}))

	client := newClient(hub, nil, "sid-1")
	go client.resultLoop()
	t.Cleanup(client.cancel)
	return client, store
}

func nextEvent(t *testing.T, c *Client) decodedEvent {
	t.Helper()
	select {
	case raw := <-c.send:
		var ev decodedEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return decodedEvent{}
	}
}

func assertNoEvent(t *testing.T, c *Client, name string) {
	t.Helper()
	for {
		select {
		case raw := <-c.send:
			var ev decodedEvent
			require.NoError(t, json.Unmarshal(raw, &ev))
			assert.NotEqual(t, name, ev.Event)
		case <-time.After(200 * time.Millisecond):
			return
		}
	}
}

func sendMessage(c *Client, text string) {
	c.handleEvent(Event{
		Event: "send_message",
		Data:  json.RawMessage(`{"message":"` + text + `"}`),
	})
}

func TestSendMessageTurnLifecycle(t *testing.T) {
	gen := &blockingGenerator{reply: "meow!"}
	client, store := newTestClient(t, gen)

	sendMessage(client, "hi")

	ev := nextEvent(t, client)
	assert.Equal(t, "user_message", ev.Event)
	assert.Equal(t, "hi", ev.Data["message"])

	ev = nextEvent(t, client)
	assert.Equal(t, "bot_typing", ev.Event)
	assert.Equal(t, "Momo", ev.Data["pet_name"])

	ev = nextEvent(t, client)
	assert.Equal(t, "bot_response", ev.Event)
	assert.Equal(t, "meow!", ev.Data["message"])
	assert.Equal(t, "Momo", ev.Data["pet_name"])

	ev = nextEvent(t, client)
	assert.Equal(t, "update_chat_history", ev.Event)
	assert.Equal(t, "hi", ev.Data["user"])
	assert.Equal(t, "meow!", ev.Data["bot"])

	history, err := store.History(context.Background(), "sid-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].UserText)
	assert.Equal(t, "meow!", history[0].BotText)
}

func TestResetWhileGenerationInFlight(t *testing.T) {
	release := make(chan struct{})
	gen := &blockingGenerator{reply: "once upon a time...", release: release}
	client, store := newTestClient(t, gen)

	sendMessage(client, "tell me a story")
	assert.Equal(t, "user_message", nextEvent(t, client).Event)
	assert.Equal(t, "bot_typing", nextEvent(t, client).Event)

	// Reset lands while the worker is still generating
	client.handleEvent(Event{Event: "reset_chat"})
	assert.Equal(t, "chat_reset", nextEvent(t, client).Event)

	close(release)

	// The stale reply's turn was reset away; it must be dropped, never
	// delivered or persisted
	assertNoEvent(t, client, "bot_response")

	history, err := store.History(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestResetThenNewTurnIgnoresStaleReply(t *testing.T) {
	release := make(chan struct{})
	gen := &blockingGenerator{reply: "once upon a time...", release: release}
	client, store := newTestClient(t, gen)

	sendMessage(client, "tell me a story")
	assert.Equal(t, "user_message", nextEvent(t, client).Event)
	assert.Equal(t, "bot_typing", nextEvent(t, client).Event)

	client.handleEvent(Event{Event: "reset_chat"})
	assert.Equal(t, "chat_reset", nextEvent(t, client).Event)

	// A new turn opens before the stale reply lands
	seq, err := store.AppendUserTurn(context.Background(), "sid-1", "what's for dinner?")
	require.NoError(t, err)

	close(release)
	assertNoEvent(t, client, "bot_response")

	// The open turn is untouched by the stale reply
	require.NoError(t, store.CompleteTurn(context.Background(), "sid-1", seq, "kibble!"))
	history, err := store.History(context.Background(), "sid-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "kibble!", history[0].BotText)
}

func TestCompletionAfterDisconnect(t *testing.T) {
	gen := &blockingGenerator{reply: "meow!"}
	client, store := newTestClient(t, gen)

	seq, err := store.AppendUserTurn(context.Background(), "sid-1", "hi")
	require.NoError(t, err)

	client.hub.register <- client
	client.hub.unregister <- client

	select {
	case <-client.ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("unregister did not cancel the client")
	}

	// A reply finishing after disconnect must not panic the process
	assert.NotPanics(t, func() {
		client.handleResult(Result{Seq: seq, UserMessage: "hi", PetName: "Momo", Reply: "meow!"})
	})
}

func TestSendMessageWithoutPersona(t *testing.T) {
	gen := &blockingGenerator{reply: "meow!"}
	client, store := newTestClient(t, gen)
	require.NoError(t, store.Delete(context.Background(), "sid-1"))

	sendMessage(client, "hi")

	ev := nextEvent(t, client)
	assert.Equal(t, "error", ev.Event)
}
