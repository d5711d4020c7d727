package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedVersions_Ordered(t *testing.T) {
	versions, err := embeddedVersions()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(versions), 2)
	assert.Equal(t, "0001_profiles", versions[0])
	assert.Equal(t, "0002_candidates", versions[1])
	assert.IsIncreasing(t, versions)
}
