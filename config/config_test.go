package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glyphica/iconsearch/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iconsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_addr: ":9090"
catalog:
  libraries: [feather]
store:
  type: local
  local:
    url: http://localhost:6333
    collection: icons
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, []string{"feather"}, cfg.Catalog.Libraries)
	assert.Equal(t, vectorstore.BackendLocal, cfg.Store.Type)
	require.NotNil(t, cfg.Store.Local)
	assert.Equal(t, "icons", cfg.Store.Local.Collection)

	// Untouched sections keep their defaults.
	assert.Equal(t, "embeddinggemma", cfg.Embedding.Model)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad-store.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  type: exotic\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, vectorstore.ErrUnsupportedBackend)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	original := Default()
	original.Server.ListenAddr = ":7000"
	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestEnvResolution(t *testing.T) {
	cfg := Default()
	t.Setenv("ICONSEARCH_ADMIN_TOKEN", "tok")
	t.Setenv("ICONSEARCH_EMBED_API_KEY", "key")
	assert.Equal(t, "tok", cfg.AdminToken())
	assert.Equal(t, "key", cfg.EmbedAPIKey())

	cfg.Server.AuthTokenEnv = ""
	assert.Empty(t, cfg.AdminToken())
}
