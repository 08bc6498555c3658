package baseline

import (
	"path/filepath"
	"testing"

	"github.com/stackgen-cli/batectify/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadFilter(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ".batectify"))

	accepted := models.NewDiagnostics()
	accepted.UnsupportedKey("root", "root", "networks")
	accepted.UnsupportedValue(models.ScopeService, "web", "port", "53:53/udp", "")

	require.NoError(t, m.Save("main branch", "docker-compose.yml", accepted))
	assert.True(t, m.Exists("main branch"))
	assert.False(t, m.Exists("other"))

	b, err := m.Load("main branch")
	require.NoError(t, err)
	assert.Equal(t, "main branch", b.Name)
	assert.Equal(t, "docker-compose.yml", b.Source)
	assert.Len(t, b.Fingerprints, 2)

	current := models.NewDiagnostics()
	current.UnsupportedKey("root", "root", "networks")
	current.UnsupportedValue(models.ScopeService, "web", "port", "53:53/udp", "")
	current.UnsupportedValue(models.ScopeService, "web", "port", "5353:53/udp", "")

	fresh := b.Filter(current)
	require.Equal(t, 1, fresh.Len())
	assert.Equal(t, "5353:53/udp", fresh.Records[0].Value)
}

func TestLoad_Missing(t *testing.T) {
	_, err := NewManager(t.TempDir()).Load("nope")
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "feature_x", sanitizeFilename("feature/x"))
	assert.Equal(t, "release-1_2", sanitizeFilename("release-1 2"))
	assert.Equal(t, "default", sanitizeFilename("..."))
}
