package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mockauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/mocks/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/metrics"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/observability/statsd"
)

func TestFavoritesService_Toggle(t *testing.T) {
	ctx := context.Background()
	kv := mockauth.NewMemoryKV()
	svc := NewFavoritesService(FavoritesServiceOptions{Store: kv})

	assert.Equal(t, []string{}, svc.Load(ctx, "u1"))

	ids, fav := svc.Toggle(ctx, "u1", "cg-1")
	assert.True(t, fav)
	assert.Equal(t, []string{"cg-1"}, ids)

	ids, fav = svc.Toggle(ctx, "u1", " cg-2 ")
	assert.True(t, fav)
	assert.Equal(t, []string{"cg-1", "cg-2"}, ids)

	ids, fav = svc.Toggle(ctx, "u1", "cg-1")
	assert.False(t, fav)
	assert.Equal(t, []string{"cg-2"}, ids)

	raw, found, err := kv.Get(ctx, FavoritesKey("u1"))
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `["cg-2"]`, raw)

	assert.True(t, svc.Contains(ctx, "u1", "cg-2"))
	assert.False(t, svc.Contains(ctx, "u2", "cg-2"), "favorites are per user")
}

func TestFavoritesService_CorruptEntryReadsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := mockauth.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, FavoritesKey("u1"), "{not json"))
	svc := NewFavoritesService(FavoritesServiceOptions{Store: kv})

	assert.Equal(t, []string{}, svc.Load(ctx, "u1"))
	ids, fav := svc.Toggle(ctx, "u1", "cg-1")
	assert.True(t, fav)
	assert.Equal(t, []string{"cg-1"}, ids)
}

func TestFavoritesService_DedupesStoredIDs(t *testing.T) {
	ctx := context.Background()
	kv := mockauth.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, FavoritesKey("u1"), `["a"," a ","","b"]`))

	assert.Equal(t, []string{"a", "b"}, NewFavoritesService(FavoritesServiceOptions{Store: kv}).Load(ctx, "u1"))
}

func TestFavoritesService_WriteFailureIsSilent(t *testing.T) {
	ctx := context.Background()
	kv := mockauth.NewMemoryKV()
	rec := &statsd.Recorder{}
	svc := NewFavoritesService(FavoritesServiceOptions{Store: kv, Metrics: rec})
	kv.FailWith(errors.New("quota exceeded"))

	ids, fav := svc.Toggle(ctx, "u1", "cg-1")
	assert.True(t, fav)
	assert.Equal(t, []string{"cg-1"}, ids)

	writes := rec.Named(metrics.MirrorWrite)
	require.Len(t, writes, 1)
	assert.Equal(t, metrics.ResultError, writes[0].Tags["result"])

	kv.FailWith(nil)
	assert.Equal(t, []string{}, svc.Load(ctx, "u1"))
}

func TestFavoritesService_NoUser(t *testing.T) {
	svc := NewFavoritesService(FavoritesServiceOptions{Store: mockauth.NewMemoryKV()})

	ids, fav := svc.Toggle(context.Background(), "", "cg-1")
	assert.False(t, fav)
	assert.Empty(t, ids)
}

func TestFavoritesService_Clear(t *testing.T) {
	ctx := context.Background()
	svc := NewFavoritesService(FavoritesServiceOptions{Store: mockauth.NewMemoryKV()})
	svc.Toggle(ctx, "u1", "cg-1")

	svc.Clear(ctx, "u1")
	assert.Equal(t, []string{}, svc.Load(ctx, "u1"))
}
