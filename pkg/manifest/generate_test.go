package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ospreyhq/osprey-cli/pkg/logging"
	"github.com/ospreyhq/osprey-cli/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const providerManifest = `{
	"startup_app": {
		"uuid": "layouts-provider",
		"url": "http://localhost:9000/provider/index.html"
	},
	"runtime": {"version": "stable"}
}`

func TestGenerateDefaultChannels(t *testing.T) {
	f := newRewriteFixture(t, true)
	path := filepath.Join(f.project.Dir, "res", "provider", "app.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(providerManifest), 0644))

	g := manifest.NewGenerator(f.project, f.rewriter, logging.NewNopLogger())
	written, err := g.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, written, 2)

	stable, err := manifest.Load(filepath.Join(f.project.Dir, "dist", "provider", "app.json"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/services/layouts/1.4.0/provider/index.html",
		stable.StartupApp.URL, "deploy mode rebases local URLs onto the CDN")
	assert.Equal(t, "stable", stable.Runtime.Version)

	staging, err := manifest.Load(filepath.Join(f.project.Dir, "dist", "provider", "app.staging.json"))
	require.NoError(t, err)
	assert.Equal(t, "stable", staging.Runtime.Version)
}

func TestGenerateCustomChannels(t *testing.T) {
	f := newRewriteFixture(t, true)
	path := filepath.Join(f.project.Dir, "res", "provider", "app.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(providerManifest), 0644))

	channels := `channels:
  - name: stable
  - name: next
    runtime: beta
`
	require.NoError(t, os.WriteFile(filepath.Join(f.project.Dir, "channels.yaml"), []byte(channels), 0644))

	g := manifest.NewGenerator(f.project, f.rewriter, logging.NewNopLogger())
	written, err := g.Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, written, 2)

	next, err := manifest.Load(filepath.Join(f.project.Dir, "dist", "provider", "app.next.json"))
	require.NoError(t, err)
	assert.Equal(t, "beta", next.Runtime.Version, "the channel's runtime override lands in its manifest")
}

func TestGenerateMissingSource(t *testing.T) {
	f := newRewriteFixture(t, true)

	g := manifest.NewGenerator(f.project, f.rewriter, logging.NewNopLogger())
	_, err := g.Generate(context.Background())
	require.Error(t, err)
}
