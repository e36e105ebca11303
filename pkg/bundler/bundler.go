package bundler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// serviceParts are the source entry directories of a service project;
// applicationParts those of a standalone application
var (
	serviceParts     = []string{"client", "provider", "demo"}
	applicationParts = []string{"app"}

	entryExtensions = []string{".ts", ".tsx", ".js", ".jsx"}
)

// Bundler bundles project sources into dist/ with esbuild
type Bundler struct {
	project *config.Project
	log     types.Logger
}

// New creates a bundler for a project
func New(project *config.Project, log types.Logger) *Bundler {
	return &Bundler{project: project, log: log}
}

// Entries discovers the project's bundle entry points by convention:
// src/<part>/index.<ext>, where the parts depend on the project kind.
func (b *Bundler) Entries() []string {
	parts := serviceParts
	if b.project.Kind == types.KindApplication {
		parts = applicationParts
	}

	var entries []string
	for _, part := range parts {
		for _, ext := range entryExtensions {
			candidate := filepath.Join(b.project.Dir, consts.SourcesDir, part, "index"+ext)
			if _, err := os.Stat(candidate); err == nil {
				entries = append(entries, candidate)
				break
			}
		}
	}
	return entries
}

// Bundle builds all discovered entries into dist/, one output directory
// per part. Debug builds carry sourcemaps; deploy builds are minified.
func (b *Bundler) Bundle(ctx context.Context, mode types.Mode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries := b.Entries()
	if len(entries) == 0 {
		b.log.Info("no bundle entries found", "dir", filepath.Join(b.project.Dir, consts.SourcesDir))
		return nil
	}

	deploy := mode == types.ModeDeploy

	opts := api.BuildOptions{
		EntryPoints: entries,
		Outdir:      filepath.Join(b.project.Dir, consts.DistDir),
		Outbase:     filepath.Join(b.project.Dir, consts.SourcesDir),
		Bundle:      true,
		Write:       true,
		Platform:    api.PlatformBrowser,
		Target:      api.ES2017,
		LogLevel:    api.LogLevelSilent,
		Define: map[string]string{
			"process.env.NODE_ENV": `"development"`,
		},
		Sourcemap: api.SourceMapLinked,
	}
	if deploy {
		opts.Define["process.env.NODE_ENV"] = `"production"`
		opts.Sourcemap = api.SourceMapNone
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
	}

	result := api.Build(opts)

	for _, warning := range result.Warnings {
		b.log.Warn("bundle warning", "detail", formatMessage(warning))
	}

	if len(result.Errors) > 0 {
		details := make([]string, 0, len(result.Errors))
		for _, msg := range result.Errors {
			details = append(details, formatMessage(msg))
		}
		return types.WrapError(types.ErrBuildFailed, strings.Join(details, "; "))
	}

	b.log.Info("sources bundled",
		"entries", len(entries),
		"minified", deploy,
	)
	return nil
}

// formatMessage renders an esbuild diagnostic with its source position
func formatMessage(msg api.Message) string {
	if msg.Location != nil {
		return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
	}
	return msg.Text
}
