package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icon_studio/catalog"
	"icon_studio/errclass"
)

func TestLoad_EmbeddedCatalog(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	assert.Len(t, c.Styles, 10)
	assert.Len(t, c.Colors, 10)
	assert.Len(t, c.Icons, 33)

	st, ok := c.Style("hand-drawn")
	require.True(t, ok)
	assert.Equal(t, "Hand-drawn", st.ID)
	assert.Equal(t, "Sketch", st.Label)

	for _, icon := range c.Icons {
		assert.NotEmpty(t, icon.ID)
		assert.Contains(t, icon.SVG, "<svg")
		_, ok := c.Style(icon.Style)
		assert.True(t, ok, "icon %s uses unknown style %q", icon.ID, icon.Style)
	}
}

func TestParse_RendersMarkdown(t *testing.T) {
	c, err := catalog.Parse([]byte(`
styles:
  - id: Flat
    description: "Use **flat** colors."
`), []byte(`[]`))
	require.NoError(t, err)
	require.Len(t, c.Styles, 1)
	assert.Equal(t, "Flat", c.Styles[0].Label)
	assert.Equal(t, "<p>Use <strong>flat</strong> colors.</p>\n", c.Styles[0].DescriptionHTML)
}

func TestParse_Errors(t *testing.T) {
	_, err := catalog.Parse([]byte("styles: [{label: x}]"), []byte("[]"))
	assert.Error(t, err)

	_, err = catalog.Parse([]byte("styles: [{id: A}, {id: A}]"), []byte("[]"))
	assert.Error(t, err)

	_, err = catalog.Parse([]byte("styles: []"), []byte("{not: [a list"))
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	assert.Len(t, c.Search(""), len(c.Icons))

	hits := c.Search("MAGNIFYING")
	require.Len(t, hits, 1)
	assert.Equal(t, "search-line", hits[0].ID)

	for _, icon := range c.Search("line art") {
		assert.Equal(t, "Line Art", icon.Style)
	}
	assert.Empty(t, c.Search("no such icon anywhere"))

	icon, ok := c.Icon("home-flat")
	require.True(t, ok)
	assert.Equal(t, "Flat", icon.Style)
	_, ok = c.Icon("missing")
	assert.False(t, ok)
}

func TestResolveStyle(t *testing.T) {
	c, err := catalog.Load()
	require.NoError(t, err)

	id, err := c.ResolveStyle(" line art ")
	require.NoError(t, err)
	assert.Equal(t, "Line Art", id)

	id, err = c.ResolveStyle("")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = c.ResolveStyle("Baroque")
	assert.True(t, errors.Is(err, errclass.ErrInvalidRequest))
}
