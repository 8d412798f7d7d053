package handler_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/event"
	"github.com/iliyamo/library-seat-reservation/internal/handler"
	"github.com/iliyamo/library-seat-reservation/internal/store"
	"github.com/iliyamo/library-seat-reservation/internal/utils"
)

const wsSecret = "test-secret"

func recvEvent(t *testing.T, sub *event.Subscriber) event.Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return event.Event{}
	}
}

func TestWebsocketAnnouncesOnlineStatus(t *testing.T) {
	b := event.NewBroadcaster()
	h := handler.NewWSHandler(b, wsSecret)
	e := echo.New()
	e.GET("/ws", h.Serve)
	srv := httptest.NewServer(e)
	defer srv.Close()

	watcher := b.Subscribe(0, event.TopicOnlineStatus)
	defer b.Unsubscribe(watcher)

	tok, err := utils.NewAccessToken(wsSecret, 42, store.RoleStudent, 15)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + tok.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	ev := recvEvent(t, watcher)
	require.Equal(t, event.KindOnlineStatus, ev.Kind)
	payload, ok := ev.Payload.(event.OnlineStatus)
	require.True(t, ok)
	assert.Equal(t, uint64(42), payload.UserID)
	assert.Equal(t, "active", payload.Status)
	assert.Equal(t, 2, payload.Online, "watcher plus the websocket client")

	require.NoError(t, conn.Close())

	ev = recvEvent(t, watcher)
	require.Equal(t, event.KindOnlineStatus, ev.Kind)
	payload, ok = ev.Payload.(event.OnlineStatus)
	require.True(t, ok)
	assert.Equal(t, uint64(42), payload.UserID)
	assert.Equal(t, "offline", payload.Status)
	assert.Equal(t, 1, payload.Online, "only the watcher remains")
}

func TestWebsocketRejectsBadToken(t *testing.T) {
	b := event.NewBroadcaster()
	h := handler.NewWSHandler(b, wsSecret)
	e := echo.New()
	e.GET("/ws", h.Serve)
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, 0, b.SubscriberCount())
}
