package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-seat-reservation/internal/event"
	"github.com/iliyamo/library-seat-reservation/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the SPA origin; token auth is the
	// actual gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler bridges the in-process broadcaster to websocket clients.
// Each connection gets one subscription: the broadcast topics it asked
// for, plus its private queues when it authenticated.
type WSHandler struct {
	Broadcaster *event.Broadcaster
	JWTSecret   string
}

// NewWSHandler constructs the handler.
func NewWSHandler(b *event.Broadcaster, secret string) *WSHandler {
	if b == nil {
		panic("nil broadcaster passed to NewWSHandler")
	}
	return &WSHandler{Broadcaster: b, JWTSecret: secret}
}

// Serve handles GET /ws.  The optional token query parameter carries
// the access token (browsers cannot set headers on websocket dials);
// without one the connection is anonymous and receives broadcast
// topics only.  The topics parameter is a comma-separated topic list,
// defaulting to the full broadcast set.
func (h *WSHandler) Serve(c echo.Context) error {
	var userID uint64
	if raw := c.QueryParam("token"); raw != "" {
		claims, err := utils.ParseAccessToken(h.JWTSecret, raw)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		userID = claims.UserID
	}

	topics := []string{event.TopicSeats, event.TopicStats, event.TopicUserSeatStatus,
		event.TopicMessages, event.TopicOnlineStatus}
	if raw := c.QueryParam("topics"); raw != "" {
		topics = strings.Split(raw, ",")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	sub := h.Broadcaster.Subscribe(userID, topics...)
	h.announce(userID, "active")

	go h.writePump(conn, sub)
	go h.readPump(conn, sub, userID)
	return nil
}

// announce publishes the connect/disconnect presence change on the
// online-status topic.
func (h *WSHandler) announce(userID uint64, status string) {
	h.Broadcaster.Publish(event.Event{
		Kind:  event.KindOnlineStatus,
		Topic: event.TopicOnlineStatus,
		Payload: event.OnlineStatus{
			UserID: userID,
			Status: status,
			Online: h.Broadcaster.SubscriberCount(),
		},
	})
}

// writePump forwards subscription events to the socket and keeps the
// connection alive with pings.  It exits when the subscription closes
// or a write fails.
func (h *WSHandler) writePump(conn *websocket.Conn, sub *event.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case ev, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client frames, serving only to detect disconnects
// and answer pongs.  On exit it tears down the subscription, which in
// turn stops the write pump.
func (h *WSHandler) readPump(conn *websocket.Conn, sub *event.Subscriber, userID uint64) {
	defer func() {
		h.Broadcaster.Unsubscribe(sub)
		h.announce(userID, "offline")
		conn.Close()
	}()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
