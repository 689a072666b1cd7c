package store

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
)

// ChangeListener holds a dedicated LISTEN connection and forwards the
// collection names announced by pg_notify. It reconnects with a backoff
// when the connection drops.
type ChangeListener struct {
	databaseURL string
	changes     chan string
}

func NewChangeListener(databaseURL string) *ChangeListener {
	return &ChangeListener{
		databaseURL: databaseURL,
		changes:     make(chan string, 64),
	}
}

// Changes yields collection names, one per notification received.
func (l *ChangeListener) Changes() <-chan string {
	return l.changes
}

// Run listens until the context is cancelled. The changes channel is
// closed on return.
func (l *ChangeListener) Run(ctx context.Context) {
	defer close(l.changes)

	backoff := time.Second
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("change listener: %v (reconnecting in %s)", err, backoff)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (l *ChangeListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if done := l.enqueue(ctx, notification.Payload); done {
			return nil
		}
	}
}

// enqueue forwards one payload without blocking the notification loop.
// When the buffer is full the backlog is drained and coalesced by
// collection name before re-enqueueing: duplicates carry no extra
// information (the mirror reloads the whole collection either way), but
// a collection's only pending notification must never be lost or the
// mirror stays stale until the next write. Returns true if the context
// ended mid-send.
func (l *ChangeListener) enqueue(ctx context.Context, payload string) bool {
	select {
	case l.changes <- payload:
		return false
	default:
	}

	seen := make(map[string]bool)
	var pending []string
	draining := true
	for draining {
		select {
		case name := <-l.changes:
			if !seen[name] {
				seen[name] = true
				pending = append(pending, name)
			}
		default:
			draining = false
		}
	}
	if !seen[payload] {
		pending = append(pending, payload)
	}

	for _, name := range pending {
		select {
		case l.changes <- name:
		case <-ctx.Done():
			return true
		}
	}
	return false
}
