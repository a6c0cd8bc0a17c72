package notify_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storyforge/core/command"
	"github.com/dmitrymomot/storyforge/core/notify"
)

func dialHub(t *testing.T, hub *notify.Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) notify.Frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame notify.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHubSendsLatestListOnConnect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hub := notify.NewHub()
	t.Cleanup(func() { _ = hub.Close() })

	require.NoError(t, hub.BroadcastCommandList(ctx, []command.Snapshot{
		{RunID: "r1", OperationName: "generate_tts_audio", Status: command.StatusRunning},
	}))

	conn := dialHub(t, hub)

	frame := readFrame(t, conn)
	assert.Equal(t, notify.FrameCommands, frame.Type)
	require.Len(t, frame.Commands, 1)
	assert.Equal(t, "r1", frame.Commands[0].RunID)
	assert.Equal(t, command.StatusRunning, frame.Commands[0].Status)
}

func TestHubPushesFrames(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hub := notify.NewHub()
	t.Cleanup(func() { _ = hub.Close() })

	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, hub.BroadcastCommandList(ctx, nil))
	frame := readFrame(t, conn)
	assert.Equal(t, notify.FrameCommands, frame.Type)
	assert.Empty(t, frame.Commands)

	require.NoError(t, hub.Notify(ctx, command.Alert{Title: "generate_chapters", Message: "done", Level: command.LevelSuccess}))
	frame = readFrame(t, conn)
	assert.Equal(t, notify.Frame{
		Type:    notify.FrameNotification,
		Title:   "generate_chapters",
		Message: "done",
		Level:   command.LevelSuccess,
	}, frame)
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	t.Parallel()

	hub := notify.NewHub()
	t.Cleanup(func() { _ = hub.Close() })

	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHubClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hub := notify.NewHub()
	conn := dialHub(t, hub)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Close())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error: %v", err)

	assert.Error(t, hub.Notify(ctx, command.Alert{Title: "late"}))
}
