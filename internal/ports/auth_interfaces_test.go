package ports_test

import (
	"testing"

	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/mocks"
	mockauth "github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/mocks/auth"
	"github.com/gsm-fullweb/careconnect-web-portal-79-sub000/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mockauth.MockAuthProvider)(nil)
	var _ ports.SessionStore = (*mockauth.MemorySessionStore)(nil)
	var _ ports.SessionEvents = (*mockauth.MemorySessionEvents)(nil)
	var _ ports.RoleResolver = mockauth.StaticResolver{}
	var _ ports.TokenIssuer = (*mockauth.StaticTokenIssuer)(nil)
	var _ ports.KVStore = (*mockauth.MemoryKV)(nil)
	var _ ports.KVStore = (*mocks.MockKVStore)(nil)
	var _ ports.ProfileStore = (*mocks.MockProfileStore)(nil)
	var _ ports.CandidateStore = (*mocks.MockCandidateStore)(nil)
	var _ ports.SessionSource = (*mocks.MockSessionSource)(nil)
}
