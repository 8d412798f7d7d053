// Package audit persists every published lifecycle event to the sys_log
// table for operator review.  The logger is an event.Sink decorator:
// it forwards each event to the wrapped sink immediately and records it
// asynchronously, so a slow or absent database never delays a state
// transition.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/iliyamo/library-seat-reservation/internal/event"
)

// queueDepth bounds the pending write backlog.  When the database falls
// behind, audit entries are dropped and counted rather than applying
// backpressure to the reservation path.
const queueDepth = 512

// Logger writes audit rows for each event passing through it.
type Logger struct {
	inner event.Sink
	db    *sql.DB
	queue chan event.Event
}

// NewLogger wraps inner with audit persistence.  A nil db downgrades to
// stdout logging so development setups work without MySQL.  The writer
// goroutine runs until ctx is cancelled.
func NewLogger(ctx context.Context, db *sql.DB, inner event.Sink) *Logger {
	l := &Logger{
		inner: inner,
		db:    db,
		queue: make(chan event.Event, queueDepth),
	}
	go l.run(ctx)
	return l
}

// Publish forwards the event and enqueues it for persistence.
func (l *Logger) Publish(ev event.Event) {
	if l.inner != nil {
		l.inner.Publish(ev)
	}
	select {
	case l.queue <- ev:
	default:
		log.Printf("audit: queue full, dropping %s event", ev.Kind)
	}
}

func (l *Logger) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-l.queue:
			l.record(ctx, ev)
		}
	}
}

func (l *Logger) record(ctx context.Context, ev event.Event) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		payload = []byte("{}")
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	if l.db == nil {
		log.Printf("audit: kind=%s user=%d topic=%s payload=%s", ev.Kind, ev.UserID, ev.Topic, payload)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err = l.db.ExecContext(writeCtx,
		`INSERT INTO sys_log (kind, topic, queue, user_id, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(ev.Kind), ev.Topic, ev.Queue, ev.UserID, payload, ts)
	if err != nil {
		log.Printf("audit: insert failed for %s event: %v", ev.Kind, err)
	}
}
