package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/metrics"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/statsd"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// FavoritesPrefix namespaces each user's favorite caregiver list.
const FavoritesPrefix = "careconnect:favorites:"

// FavoritesKey returns the mirror key holding userID's favorites.
func FavoritesKey(userID string) string { return FavoritesPrefix + userID }

// FavoritesServiceOptions groups dependencies for FavoritesService.
type FavoritesServiceOptions struct {
	Store   ports.KVStore
	Metrics statsd.Sink
	Logger  *slog.Logger
}

// FavoritesService keeps a per-user list of favorite caregiver ids in the mirror
// store as a JSON array. Read and write failures degrade to an empty list and a
// dropped write; the caller always gets an answer.
type FavoritesService struct {
	store   ports.KVStore
	metrics statsd.Sink
	logger  *slog.Logger
}

// NewFavoritesService constructs a FavoritesService.
func NewFavoritesService(opts FavoritesServiceOptions) *FavoritesService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoritesService{
		store:   opts.Store,
		metrics: opts.Metrics,
		logger:  logger.With("component", "favorites"),
	}
}

// Load returns the user's favorites in insertion order. Unreadable or corrupt data
// reads as an empty list.
func (s *FavoritesService) Load(ctx context.Context, userID string) []string {
	if userID == "" {
		return []string{}
	}
	raw, found, err := s.store.Get(ctx, FavoritesKey(userID))
	if err != nil {
		s.logger.DebugContext(ctx, "favorites read failed", "user_id", userID, "error", err)
		return []string{}
	}
	if !found {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		s.logger.DebugContext(ctx, "favorites entry is corrupt, ignoring", "user_id", userID, "error", err)
		return []string{}
	}
	return compactIDs(ids)
}

// Contains reports whether caregiverID is among the user's favorites.
func (s *FavoritesService) Contains(ctx context.Context, userID, caregiverID string) bool {
	return slices.Contains(s.Load(ctx, userID), strings.TrimSpace(caregiverID))
}

// Toggle adds or removes caregiverID and returns the new list and whether the
// caregiver is now a favorite. A failed write is logged and otherwise ignored.
func (s *FavoritesService) Toggle(ctx context.Context, userID, caregiverID string) ([]string, bool) {
	caregiverID = strings.TrimSpace(caregiverID)
	ids := s.Load(ctx, userID)
	if userID == "" || caregiverID == "" {
		return ids, false
	}

	favorite := true
	if i := slices.Index(ids, caregiverID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
		favorite = false
	} else {
		ids = append(ids, caregiverID)
	}
	s.write(ctx, userID, ids)
	return ids, favorite
}

// Clear drops every favorite for the user.
func (s *FavoritesService) Clear(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	err := s.store.Remove(ctx, FavoritesKey(userID))
	metrics.EmitOutcome(s.metrics, metrics.MirrorWrite, err)
	if err != nil {
		s.logger.DebugContext(ctx, "favorites clear failed", "user_id", userID, "error", err)
	}
}

func (s *FavoritesService) write(ctx context.Context, userID string, ids []string) {
	payload, err := json.Marshal(ids)
	if err == nil {
		err = s.store.Set(ctx, FavoritesKey(userID), string(payload))
	}
	metrics.EmitOutcome(s.metrics, metrics.MirrorWrite, err)
	if err != nil {
		s.logger.DebugContext(ctx, "favorites write failed", "user_id", userID, "error", err)
	}
}

// compactIDs trims ids and drops blanks and repeats, keeping first occurrences.
func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
