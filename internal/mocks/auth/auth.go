// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/domain/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider  = (*MockAuthProvider)(nil)
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.SessionEvents = (*MemorySessionEvents)(nil)
	_ ports.KVStore       = (*MemoryKV)(nil)
	_ ports.RoleResolver  = StaticResolver{}
	_ ports.TokenIssuer   = (*StaticTokenIssuer)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	StatePrefix string
	NoncePrefix string
	DefaultUser domainauth.Identity

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-idp/auth",
		StatePrefix: "state",
		NoncePrefix: "nonce",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	noncePrefix := m.NoncePrefix
	if noncePrefix == "" {
		noncePrefix = "nonce"
	}
	return authURL, fmt.Sprintf("%s-%d", statePrefix, n), fmt.Sprintf("%s-%d", noncePrefix, n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}

	user := m.DefaultUser
	if user.UserID == "" {
		user = domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
		}
	}
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

// Get returns ports.ErrSessionNotFound for unknown ids. Expiry is left to the caller.
func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok || id == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// MemorySessionEvents is a synchronous in-process event bus. Publish delivers to
// every live subscriber before returning.
type MemorySessionEvents struct {
	mu        sync.Mutex
	nextID    int
	subs      map[int]func(domainauth.SessionEvent)
	published []domainauth.SessionEvent

	PublishErr error
}

// NewMemorySessionEvents creates an empty bus.
func NewMemorySessionEvents() *MemorySessionEvents {
	return &MemorySessionEvents{subs: make(map[int]func(domainauth.SessionEvent))}
}

func (b *MemorySessionEvents) Publish(_ context.Context, ev domainauth.SessionEvent) error {
	b.mu.Lock()
	if b.PublishErr != nil {
		b.mu.Unlock()
		return b.PublishErr
	}
	b.published = append(b.published, ev)
	fns := make([]func(domainauth.SessionEvent), 0, len(b.subs))
	for i := 0; i < b.nextID; i++ {
		if fn, ok := b.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
	return nil
}

func (b *MemorySessionEvents) Subscribe(ctx context.Context, fn func(domainauth.SessionEvent)) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}, nil
}

// Published returns a copy of every event published so far.
func (b *MemorySessionEvents) Published() []domainauth.SessionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domainauth.SessionEvent(nil), b.published...)
}

// Subscribers reports the number of live subscriptions.
func (b *MemorySessionEvents) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// MemoryKV is an in-memory KVStore. Setting Err makes every call fail.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string

	Err error
}

// NewMemoryKV creates an empty store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.values, key)
	return nil
}

// FailWith switches the store into failing mode; nil restores it.
func (m *MemoryKV) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// StaticResolver resolves every identity with an email to Role.
// Emails listed in ByEmail override Role.
type StaticResolver struct {
	Role    domainauth.Role
	ByEmail map[string]domainauth.Role
}

func (r StaticResolver) Resolve(_ context.Context, id *domainauth.Identity) domainauth.Resolution {
	if id == nil || strings.TrimSpace(id.Email) == "" {
		return domainauth.NoRole()
	}
	role := r.Role
	if v, ok := r.ByEmail[domainauth.NormalizeEmail(id.Email)]; ok {
		role = v
	}
	return domainauth.Resolution{
		Role:    role,
		Profile: domainauth.RoleProfile{Source: domainauth.SourceDefault, Email: id.Email},
	}
}

// StaticTokenIssuer issues "tok-<session id>" and parses them back through Sessions.
type StaticTokenIssuer struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

func (s *StaticTokenIssuer) Issue(sess domainauth.Session) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[string]domainauth.Session)
	}
	tok := "tok-" + sess.ID
	s.sessions[tok] = sess
	return tok, nil
}

func (s *StaticTokenIssuer) Parse(token string) (ports.TokenClaims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return ports.TokenClaims{}, errors.New("invalid token")
	}
	return ports.TokenClaims{
		Subject:   sess.UserID,
		Email:     sess.Email,
		Role:      sess.Role,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}
