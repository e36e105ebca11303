package resolver

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/template"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// semverPattern matches three-part release versions such as 2.3.4
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Provider resolves provider version tokens to manifest URLs. Results are
// cached per token on the resolver, so filesystem probes happen at most once
// per token per Provider.
type Provider struct {
	project *config.Project
	engine  *template.Engine
	log     types.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewProvider creates a provider URL resolver for a project
func NewProvider(project *config.Project, engine *template.Engine, log types.Logger) *Provider {
	return &Provider{
		project: project,
		engine:  engine,
		log:     log,
		cache:   make(map[string]string),
	}
}

// Resolve maps a version token to a provider manifest URL. When
// currentManifestURL carries a query string, the query is re-attached to the
// resolved URL so runtime parameters survive the swap.
func (p *Provider) Resolve(token, currentManifestURL string) (string, error) {
	resolved, err := p.resolveBase(token)
	if err != nil {
		return "", err
	}
	return p.withQueryFrom(resolved, currentManifestURL), nil
}

// resolveBase resolves and caches the URL for a token, without any query
// handling
func (p *Provider) resolveBase(token string) (string, error) {
	p.mu.Lock()
	cached, ok := p.cache[token]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	src, overrides, err := p.chooseTemplate(token)
	if err != nil {
		return "", err
	}

	vars := p.project.Params()
	for key, value := range overrides {
		vars[key] = value
	}

	resolved, err := p.engine.Expand(src, vars)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.cache[token] = resolved
	p.mu.Unlock()

	p.log.Debug("resolved provider version", "token", token, "url", resolved)
	return resolved, nil
}

// chooseTemplate picks the URL template for a token; first match wins
func (p *Provider) chooseTemplate(token string) (string, map[string]interface{}, error) {
	switch {
	case token == consts.TokenLocal:
		if p.resourceExists(consts.LocalProviderFile) {
			return localURL(consts.LocalProviderFile), nil, nil
		}
		return localURL(consts.ProviderManifestFile), nil, nil

	case token == consts.TokenStable:
		return "${CDN_LOCATION}/app.json", nil, nil

	case token == consts.TokenStaging:
		return "${CDN_LOCATION}/app.staging.json", nil, nil

	case token == consts.TokenTesting:
		if p.resourceExists(consts.TestProviderFile) {
			return localURL(consts.TestProviderFile), nil, nil
		}
		return localURL(consts.ProviderManifestFile), nil, nil

	case strings.Contains(token, "://"):
		return token, nil, nil

	case semverPattern.MatchString(token):
		return "${CDN_LOCATION}/app.json", map[string]interface{}{consts.KeyVersion: token}, nil

	default:
		return "", nil, types.WrapError(types.ErrInvalidVersion,
			fmt.Sprintf("%s is not a valid version number or channel", token))
	}
}

// resourceExists checks for a file under the project's resources directory
func (p *Provider) resourceExists(rel string) bool {
	_, err := os.Stat(filepath.Join(p.project.Dir, consts.ResourcesDir, filepath.FromSlash(rel)))
	return err == nil
}

// localURL builds a dev-server URL template for a resource path
func localURL(rel string) string {
	return "http://localhost:${PORT}/" + rel
}

// withQueryFrom carries the query string of current over to resolved
func (p *Provider) withQueryFrom(resolved, current string) string {
	if current == "" || !strings.Contains(current, "?") {
		return resolved
	}

	parsed, err := url.Parse(current)
	if err != nil {
		p.log.Warn("cannot preserve query string", "url", current, "error", err)
		return resolved
	}
	if parsed.RawQuery == "" {
		return resolved
	}

	return resolved + "?" + parsed.RawQuery
}
