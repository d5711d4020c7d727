package ports

import (
	"context"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
)

// ProfileStore looks up the profiles table. FindByEmail returns nil, nil when no row matches.
type ProfileStore interface {
	FindByEmail(ctx context.Context, email string) (*domainauth.RoleProfile, error)
}

// CandidateStore looks up caregiver applications. FindByEmail returns nil, nil when no row matches.
type CandidateStore interface {
	FindByEmail(ctx context.Context, email string) (*domainauth.RoleProfile, error)
}

// KVStore is a small string key/value store used for client-visible mirrors.
// Get reports found=false for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
