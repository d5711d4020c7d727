package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/redis/go-redis/v9"
)

// DefaultSessionEventsChannel is the pub/sub channel carrying session lifecycle events.
const DefaultSessionEventsChannel = "careconnect:session-events"

// SessionEventBusOptions configures a SessionEventBus.
type SessionEventBusOptions struct {
	Client  redis.UniversalClient
	Channel string
	Logger  *slog.Logger
}

// SessionEventBus publishes and delivers session events over Redis pub/sub so every
// server instance sees logins, refreshes and logouts performed by any other.
type SessionEventBus struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
}

// NewSessionEventBus creates a bus on the configured channel.
func NewSessionEventBus(opts SessionEventBusOptions) *SessionEventBus {
	channel := opts.Channel
	if channel == "" {
		channel = DefaultSessionEventsChannel
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionEventBus{
		client:  opts.Client,
		channel: channel,
		logger:  logger.With("component", "session_events"),
	}
}

// Publish sends ev to all subscribers.
func (b *SessionEventBus) Publish(ctx context.Context, ev domainauth.SessionEvent) error {
	if ev.SessionID == "" {
		return errors.New("session event requires a session id")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe installs fn as a listener. The subscription is confirmed before returning,
// so events published after Subscribe returns are delivered. fn runs on the receiver goroutine
// and must not call stop.
func (b *SessionEventBus) Subscribe(
	ctx context.Context,
	fn func(domainauth.SessionEvent),
) (func(), error) {
	if fn == nil {
		return nil, errors.New("session event handler is required")
	}

	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.listen(listenCtx, pubsub.Channel(), fn)
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			if err := pubsub.Close(); err != nil {
				b.logger.Debug("close pubsub", "error", err)
			}
			<-done
		})
	}

	// Tie the subscription to the caller's context as well.
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()

	return stop, nil
}

func (b *SessionEventBus) listen(ctx context.Context, msgs <-chan *redis.Message, fn func(domainauth.SessionEvent)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev domainauth.SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Warn("discarding malformed session event", "error", err)
				continue
			}
			fn(ev)
		}
	}
}
