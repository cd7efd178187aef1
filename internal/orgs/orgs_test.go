package orgs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveKnownCode(t *testing.T) {
	r, err := NewRegistry([]Org{
		{Code: "AB", CanonicalID: "ORG-0001", DisplayName: "Alpha Bhd"},
		{Code: "cd", CanonicalID: "ORG-0002", DisplayName: "Ceria Delima"},
	})
	require.NoError(t, err)

	org, ok := r.Resolve("AB")
	assert.True(t, ok)
	assert.Equal(t, "ORG-0001", org.CanonicalID)

	// Lookup is case-insensitive both ways.
	org, ok = r.Resolve("cd")
	assert.True(t, ok)
	assert.Equal(t, "ORG-0002", org.CanonicalID)
	assert.Equal(t, "CD", org.Code)
}

func TestResolveUnknownCodeRetained(t *testing.T) {
	r := Empty()
	org, ok := r.Resolve("zz")
	assert.False(t, ok)
	assert.Equal(t, "ZZ", org.Code)
	assert.Empty(t, org.CanonicalID)
}

func TestDuplicateCodeRejected(t *testing.T) {
	_, err := NewRegistry([]Org{
		{Code: "AB", CanonicalID: "ORG-0001"},
		{Code: "ab", CanonicalID: "ORG-0009"},
	})
	require.Error(t, err)
}

func TestEntryValidation(t *testing.T) {
	_, err := NewRegistry([]Org{{Code: "", CanonicalID: "ORG-0001"}})
	require.Error(t, err)

	_, err = NewRegistry([]Org{{Code: "AB"}})
	require.Error(t, err)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orgs.yaml")
	content := `organizations:
  - code: AB
    canonical_id: ORG-0001
    display_name: Alpha Bhd
  - code: KL
    canonical_id: ORG-0014
    display_name: Kuala Lumpur Branch
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"AB", "KL"}, r.Codes())

	org, ok := r.Resolve("KL")
	assert.True(t, ok)
	assert.Equal(t, "Kuala Lumpur Branch", org.DisplayName)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
