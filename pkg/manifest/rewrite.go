package manifest

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/resolver"
	"github.com/ospreyhq/osprey-cli/pkg/template"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// Overrides adjust a single rewrite
type Overrides struct {
	// ProviderVersion is the version token for the project's own service
	// manifest URL; empty picks local in debug mode and stable in deploy
	// mode
	ProviderVersion string

	// RuntimeVersion replaces the manifest's runtime version; a channel
	// name is written verbatim except in injected mode, where it is
	// resolved to a concrete build first
	RuntimeVersion string

	// Services selects how the project's own service declaration is
	// handled; empty means normal
	Services types.ServiceMode
}

// Rewriter rebases manifests between the CDN and the local dev server and
// re-resolves service and runtime versions
type Rewriter struct {
	project   *config.Project
	engine    *template.Engine
	providers *resolver.Provider
	runtimes  *resolver.Runtime
	log       types.Logger
}

// NewRewriter creates a manifest rewriter
func NewRewriter(project *config.Project, engine *template.Engine, providers *resolver.Provider,
	runtimes *resolver.Runtime, log types.Logger) *Rewriter {
	return &Rewriter{
		project:   project,
		engine:    engine,
		providers: providers,
		runtimes:  runtimes,
		log:       log,
	}
}

// RewriteFile loads a manifest and rewrites it for the given mode. The file
// is never modified; callers receive a fresh document.
func (r *Rewriter) RewriteFile(ctx context.Context, path string, mode types.Mode, over Overrides) (*types.Manifest, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := r.rewrite(ctx, m, path, mode, over); err != nil {
		return nil, err
	}

	return m, nil
}

func (r *Rewriter) rewrite(ctx context.Context, m *types.Manifest, path string, mode types.Mode, over Overrides) error {
	params := r.project.Params()

	cdnBase, err := r.engine.Expand(r.project.CDNLocation(), params)
	if err != nil {
		return err
	}
	localBase, err := r.engine.Expand("http://localhost:${PORT}", params)
	if err != nil {
		return err
	}

	// Debug rebases CDN URLs onto the dev server (keeping the sub-app path
	// the manifest lives under); deploy rebases dev-server URLs onto the CDN.
	var from, to string
	switch mode {
	case types.ModeDeploy:
		from, to = localBase, cdnBase
	default:
		from, to = cdnBase, r.debugBase(localBase, path)
	}

	if err := r.rewriteURLs(m, params, from, to); err != nil {
		return err
	}

	if err := r.rewriteService(m, mode, over); err != nil {
		return err
	}

	return r.rewriteRuntime(ctx, m, over)
}

// debugBase appends the manifest's directory under res/ to the dev server
// origin; the server maps res/ onto the URL root
func (r *Rewriter) debugBase(localBase, path string) string {
	resRoot := filepath.Join(r.project.Dir, consts.ResourcesDir)

	rel, err := filepath.Rel(resRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return localBase
	}

	sub := filepath.Dir(rel)
	if sub == "." {
		return localBase
	}

	return localBase + "/" + filepath.ToSlash(sub)
}

// rewriteURLs rebases the startup URL, startup icon and shortcut icon.
// Each field is templated first so CDN references written as templates
// rebase the same way as literal ones.
func (r *Rewriter) rewriteURLs(m *types.Manifest, params map[string]interface{}, from, to string) error {
	rebase := func(u string) (string, error) {
		if u == "" {
			return "", nil
		}
		expanded, err := r.engine.Expand(u, params)
		if err != nil {
			return "", err
		}
		if from != "" && strings.HasPrefix(expanded, from) {
			expanded = to + strings.TrimPrefix(expanded, from)
		}
		return expanded, nil
	}

	var err error
	if m.StartupApp != nil {
		if m.StartupApp.URL, err = rebase(m.StartupApp.URL); err != nil {
			return err
		}
		if m.StartupApp.Icon, err = rebase(m.StartupApp.Icon); err != nil {
			return err
		}
	}
	if m.Shortcut != nil {
		if m.Shortcut.Icon, err = rebase(m.Shortcut.Icon); err != nil {
			return err
		}
	}

	return nil
}

// rewriteService handles the declaration matching the project's own name
func (r *Rewriter) rewriteService(m *types.Manifest, mode types.Mode, over Overrides) error {
	idx := -1
	for i, svc := range m.Services {
		if svc.Name == r.project.Name() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	serviceMode := over.Services
	if serviceMode == "" {
		serviceMode = types.ServiceModeNormal
	}

	token := over.ProviderVersion
	if token == "" {
		if mode == types.ModeDeploy {
			token = consts.TokenStable
		} else {
			token = consts.TokenLocal
		}
	}

	switch serviceMode {
	case types.ServiceModeNormal:
		resolved, err := r.providers.Resolve(token, m.Services[idx].ManifestURL)
		if err != nil {
			return err
		}
		m.Services[idx].ManifestURL = resolved

	case types.ServiceModeNone:
		m.Services = removeService(m.Services, idx)

	case types.ServiceModeInjected:
		if !r.project.Injectable() {
			return types.WrapError(types.ErrNotInjectable, r.project.Name())
		}

		resolved, err := r.providers.Resolve(token, m.Services[idx].ManifestURL)
		if err != nil {
			return err
		}

		if m.StartupApp != nil {
			name := r.project.Name()
			m.StartupApp.SetExtra(name+"Api", true)
			if len(m.Services[idx].Config) > 0 {
				var cfg interface{}
				if err := json.Unmarshal(m.Services[idx].Config, &cfg); err == nil {
					m.StartupApp.SetExtra(name+"Config", cfg)
				}
			}
			m.StartupApp.SetExtra(name+"Manifest", resolved)
		}

		m.Services = removeService(m.Services, idx)
	}

	return nil
}

// removeService drops one declaration, discarding the list when it empties
func removeService(services []types.Service, idx int) []types.Service {
	out := append(services[:idx:idx], services[idx+1:]...)
	if len(out) == 0 {
		return nil
	}
	return out
}

// rewriteRuntime applies the runtime version override. Injected mode needs
// a concrete build so the private runtime copy can be named after the port.
func (r *Rewriter) rewriteRuntime(ctx context.Context, m *types.Manifest, over Overrides) error {
	injected := over.Services == types.ServiceModeInjected

	token := over.RuntimeVersion
	if token == "" {
		if !injected {
			return nil
		}
		if m.Runtime != nil && m.Runtime.Version != "" {
			token = m.Runtime.Version
		} else {
			token = consts.ChannelStable
		}
	}

	if m.Runtime == nil {
		m.Runtime = &types.RuntimeOptions{}
	}

	if !injected {
		m.Runtime.Version = token
		return nil
	}

	build, err := r.runtimes.Resolve(ctx, token)
	if err != nil {
		return err
	}
	mapped, err := resolver.Mapped(build, r.project.Port())
	if err != nil {
		return err
	}
	m.Runtime.Version = mapped

	return nil
}
