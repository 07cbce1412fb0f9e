package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glyphica/iconsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLibrary(t *testing.T, dir, library, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, library+".json"), []byte(contents), 0644))
}

func TestDirLoaderLoadIcons(t *testing.T) {
	dir := t.TempDir()
	writeLibrary(t, dir, "feather", `[
		{"name": "arrow-left", "category": "Navigation"},
		{"name": "house-door", "category": "Buildings", "tags": ["home", "building"], "svg": "<svg/>"}
	]`)
	writeLibrary(t, dir, "bootstrap", `[
		{"name": "wifi"}
	]`)

	loader := NewDirLoader(dir)
	ctx := context.Background()

	t.Run("loads selected libraries in order", func(t *testing.T) {
		icons, err := loader.LoadIcons(ctx, []string{"feather", "bootstrap"})
		require.NoError(t, err)
		require.Len(t, icons, 3)

		assert.Equal(t, "feather__arrow-left", icons[0].Id)
		assert.Equal(t, []string{"arrow", "left"}, icons[0].Tags, "tags derived from hyphenated name")
		assert.Equal(t, "Navigation", icons[0].Category)

		assert.Equal(t, []string{"home", "building"}, icons[1].Tags, "explicit tags preserved")
		assert.Equal(t, "<svg/>", icons[1].SVG)

		assert.Equal(t, "bootstrap__wifi", icons[2].Id)
	})

	t.Run("missing library skipped", func(t *testing.T) {
		icons, err := loader.LoadIcons(ctx, []string{"feather", "no-such-library"})
		require.NoError(t, err)
		assert.Len(t, icons, 2)
	})

	t.Run("malformed library fails", func(t *testing.T) {
		writeLibrary(t, dir, "broken", `{not json`)
		_, err := loader.LoadIcons(ctx, []string{"broken"})
		assert.Error(t, err)
	})
}

func TestStaticLoader(t *testing.T) {
	loader := &Static{Icons: []core.Icon{
		{Id: core.IconID("feather", "star"), Name: "star", Library: "feather"},
		{Id: core.IconID("bootstrap", "star"), Name: "star", Library: "bootstrap"},
	}}

	icons, err := loader.LoadIcons(context.Background(), []string{"feather"})
	require.NoError(t, err)
	require.Len(t, icons, 1)
	assert.Equal(t, "feather__star", icons[0].Id)
}
