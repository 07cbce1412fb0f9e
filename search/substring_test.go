package search

import (
	"testing"

	"github.com/glyphica/iconsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstringSearch(t *testing.T) {
	icons := []core.Icon{
		{Id: "feather__home", Name: "home", Library: "feather"},
		{Id: "bootstrap__house-door", Name: "house-door", Library: "bootstrap", Tags: []string{"house", "door"}},
		{Id: "feather__anchor", Name: "anchor", Library: "feather", Synonyms: []string{"harbor"}},
		{Id: "feather__home-wifi", Name: "home-wifi", Library: "feather"},
	}

	t.Run("matches name substring", func(t *testing.T) {
		results := SubstringSearch(icons, "hous", 10)
		require.Len(t, results, 1)
		assert.Equal(t, "house-door", results[0].Icon.Name)
		assert.Zero(t, results[0].Score)
	})

	t.Run("matches tags and synonyms", func(t *testing.T) {
		results := SubstringSearch(icons, "door", 10)
		require.Len(t, results, 1)
		assert.Equal(t, "bootstrap__house-door", results[0].Icon.Id)

		results = SubstringSearch(icons, "harbor", 10)
		require.Len(t, results, 1)
		assert.Equal(t, "feather__anchor", results[0].Icon.Id)
	})

	t.Run("case insensitive and trimmed", func(t *testing.T) {
		results := SubstringSearch(icons, "  HoMe ", 10)
		require.Len(t, results, 2)
	})

	t.Run("preserves catalog order", func(t *testing.T) {
		results := SubstringSearch(icons, "home", 10)
		require.Len(t, results, 2)
		assert.Equal(t, "feather__home", results[0].Icon.Id)
		assert.Equal(t, "feather__home-wifi", results[1].Icon.Id)
	})

	t.Run("honors limit", func(t *testing.T) {
		results := SubstringSearch(icons, "home", 1)
		assert.Len(t, results, 1)
	})

	t.Run("empty query yields nothing", func(t *testing.T) {
		assert.Empty(t, SubstringSearch(icons, "   ", 10))
		assert.Empty(t, SubstringSearch(icons, "home", 0))
	})
}
