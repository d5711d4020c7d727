package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// MirrorJanitorOptions configures a MirrorJanitor.
type MirrorJanitorOptions struct {
	Events ports.SessionEvents
	Mirror ports.KVStore
	Logger *slog.Logger
}

// MirrorJanitor drops mirrored access tokens for sessions that end while no
// stream for them is open on this instance.
type MirrorJanitor struct {
	events ports.SessionEvents
	mirror ports.KVStore
	logger *slog.Logger
}

// NewMirrorJanitor constructs a MirrorJanitor.
func NewMirrorJanitor(opts MirrorJanitorOptions) *MirrorJanitor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorJanitor{
		events: opts.Events,
		mirror: opts.Mirror,
		logger: logger.With("component", "mirror_janitor"),
	}
}

// Run listens for ended sessions until ctx is cancelled.
func (j *MirrorJanitor) Run(ctx context.Context) error {
	if j.events == nil || j.mirror == nil {
		return errors.New("mirror janitor requires events and mirror")
	}
	stop, err := j.events.Subscribe(ctx, func(ev domainauth.SessionEvent) {
		j.handle(ctx, ev)
	})
	if err != nil {
		return fmt.Errorf("subscribe session events: %w", err)
	}
	defer stop()

	<-ctx.Done()
	return nil
}

func (j *MirrorJanitor) handle(ctx context.Context, ev domainauth.SessionEvent) {
	if ev.Kind != domainauth.SessionEnded || ev.SessionID == "" {
		return
	}
	if err := j.mirror.Remove(ctx, TokenMirrorKey(ev.SessionID)); err != nil {
		j.logger.WarnContext(ctx, "mirror remove failed", "session_id", ev.SessionID, "error", err)
	}
}
