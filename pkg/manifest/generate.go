package manifest

import (
	"context"
	"path/filepath"

	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// Generator writes per-channel provider manifests into dist/provider
type Generator struct {
	project  *config.Project
	rewriter *Rewriter
	log      types.Logger
}

// NewGenerator creates a generator over a project's rewriter
func NewGenerator(project *config.Project, rewriter *Rewriter, log types.Logger) *Generator {
	return &Generator{
		project:  project,
		rewriter: rewriter,
		log:      log,
	}
}

// Generate rewrites the provider manifest source once per release channel,
// in deploy mode with that channel's runtime and provider versions, and
// writes the results under dist/provider. It returns the written paths.
func (g *Generator) Generate(ctx context.Context) ([]string, error) {
	channels, err := LoadChannels(filepath.Join(g.project.Dir, consts.ChannelsFile))
	if err != nil {
		return nil, err
	}

	source := filepath.Join(g.project.Dir, consts.ResourcesDir, filepath.FromSlash(consts.ProviderManifestFile))
	outDir := filepath.Join(g.project.Dir, consts.DistDir, "provider")

	written := make([]string, 0, len(channels))
	for _, ch := range channels {
		m, err := g.rewriter.RewriteFile(ctx, source, types.ModeDeploy, Overrides{
			RuntimeVersion:  ch.Runtime,
			ProviderVersion: ch.Provider,
		})
		if err != nil {
			return written, types.WrapError(err, "generating channel "+ch.Name)
		}

		out := filepath.Join(outDir, ch.File)
		if err := Save(out, m); err != nil {
			return written, types.WrapError(err, "writing channel "+ch.Name)
		}

		g.log.Info("channel manifest generated",
			"channel", ch.Name,
			"file", out,
			"runtime", ch.Runtime,
		)
		written = append(written, out)
	}

	return written, nil
}
