package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAllowList_ContainsAdmin(t *testing.T) {
	list := DefaultAllowList()
	assert.True(t, list.Contains("admin@careconnect.com"))
	assert.True(t, list.Contains("  ADMIN@careconnect.com "))
	assert.False(t, list.Contains("someone@careconnect.com"))
	assert.False(t, list.Contains(""))
}

func TestNewAllowList_SkipsBlank(t *testing.T) {
	list := NewAllowList([]string{"", "  ", "Ops@Example.com"})
	assert.True(t, list.Contains("ops@example.com"))
	assert.False(t, list.Contains(" "))
}
