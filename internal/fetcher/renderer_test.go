package fetcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderEmbeddedHome(t *testing.T) {
	r := NewRenderer("", "Portal")
	out, err := r.Render(HomeTemplate)
	require.NoError(t, err)

	doc, err := Parse(out, "text/html")
	require.NoError(t, err)
	for _, id := range []string{"header", "sidebar", "footer"} {
		require.NotNil(t, doc.FindByID(id), "zone %s", id)
	}
}

func TestRenderFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"),
		[]byte(`<div id="header">{{.Path}}</div>`), 0644))

	out, err := NewRenderer(dir, "").Render(HomeTemplate)
	require.NoError(t, err)
	require.Equal(t, `<div id="header">/</div>`, string(out))
}

func TestRenderMissingDirectory(t *testing.T) {
	_, err := NewRenderer(filepath.Join(t.TempDir(), "missing"), "").Render(HomeTemplate)
	require.Error(t, err)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := NewRenderer("", "").Render("nope.html")
	require.Error(t, err)
}

func TestRenderRetriesAfterLoadFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")
	r := NewRenderer(dir, "")

	require.Error(t, r.Check())
	_, err := r.Render(HomeTemplate)
	require.Error(t, err)

	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"),
		[]byte(`<div id="header">ok</div>`), 0644))

	require.NoError(t, r.Check())
	out, err := r.Render(HomeTemplate)
	require.NoError(t, err)
	require.Equal(t, `<div id="header">ok</div>`, string(out))
}
