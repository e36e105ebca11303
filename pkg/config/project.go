package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// Project is the resolved per-project configuration: the merged parameter
// mapping plus the project kind inferred from which file was found. Values
// are read-only after loading.
type Project struct {
	// Kind records whether this is a service or application project
	Kind types.ProjectKind

	// Dir is the project root directory
	Dir string

	// File is the configuration file the parameters were loaded from
	File string

	params map[string]interface{}
}

// Params returns a copy of the merged parameter mapping
func (p *Project) Params() map[string]interface{} {
	out := make(map[string]interface{}, len(p.params))
	for key, value := range p.params {
		out[key] = value
	}
	return out
}

// Get returns a raw parameter value
func (p *Project) Get(key string) (interface{}, bool) {
	value, ok := p.params[key]
	return value, ok
}

// GetString returns a string parameter, or empty when absent or not a string
func (p *Project) GetString(key string) string {
	if value, ok := p.params[key].(string); ok {
		return value
	}
	return ""
}

// GetBool returns a boolean parameter, false when absent
func (p *Project) GetBool(key string) bool {
	if value, ok := p.params[key].(bool); ok {
		return value
	}
	return false
}

// Name returns the project/service name
func (p *Project) Name() string {
	return p.GetString(consts.KeyName)
}

// Title returns the human-readable project title
func (p *Project) Title() string {
	return p.GetString(consts.KeyTitle)
}

// Port returns the dev server port
func (p *Project) Port() int {
	if value, ok := p.params[consts.KeyPort].(float64); ok {
		return int(value)
	}
	return 0
}

// CDNLocation returns the CDN base URL for deployed assets
func (p *Project) CDNLocation() string {
	return p.GetString(consts.KeyCDNLocation)
}

// Injectable reports whether the service may be bundled into the runtime
func (p *Project) Injectable() bool {
	return p.GetBool(consts.KeyInjectable)
}

// DemoManifest returns the demo manifest path, relative to the project root
func (p *Project) DemoManifest() string {
	if path := p.GetString(consts.KeyDemoManifest); path != "" {
		return path
	}
	return filepath.Join(consts.ResourcesDir, consts.DemoManifestFile)
}

// LauncherBinary returns the runtime launcher executable name
func (p *Project) LauncherBinary() string {
	if binary := p.GetString(consts.KeyLauncher); binary != "" {
		return binary
	}
	return consts.DefaultLauncherBinary
}

// requiredKeys must be present, with the right type, after merging
var requiredKeys = []string{
	consts.KeyName,
	consts.KeyTitle,
	consts.KeyPort,
	consts.KeyCDNLocation,
}

// Loader locates, merges and memoizes the project configuration. The cache
// lives on the Loader, so two loaders never share state.
type Loader struct {
	dir string
	log types.Logger

	mu     sync.Mutex
	cached *Project
}

// NewLoader creates a Loader for the given project directory
func NewLoader(dir string, log types.Logger) *Loader {
	return &Loader{
		dir: dir,
		log: log,
	}
}

// Load returns the project configuration, reading it on first use. Later
// calls return the memoized result and touch neither disk nor environment.
func (l *Loader) Load() (*Project, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached, nil
	}

	project, err := l.load()
	if err != nil {
		return nil, err
	}

	l.cached = project
	return project, nil
}

func (l *Loader) load() (*Project, error) {
	file, kind, err := l.locate()
	if err != nil {
		return nil, err
	}

	params, err := readParams(file)
	if err != nil {
		return nil, err
	}

	// Per-developer override sits next to the base file
	userFile := strings.TrimSuffix(file, ".json") + ".user.json"
	if _, err := os.Stat(userFile); err == nil {
		overrides, err := readParams(userFile)
		if err != nil {
			return nil, err
		}
		for key, value := range overrides {
			params[key] = value
		}
	}

	l.applyEnvOverrides(params)

	if err := validateParams(params); err != nil {
		return nil, err
	}

	return &Project{
		Kind:   kind,
		Dir:    l.dir,
		File:   file,
		params: params,
	}, nil
}

// locate finds the configuration file; the service filename wins when both
// exist
func (l *Loader) locate() (string, types.ProjectKind, error) {
	candidates := []struct {
		file string
		kind types.ProjectKind
	}{
		{consts.ServiceConfigFile, types.KindService},
		{consts.ProjectConfigFile, types.KindApplication},
	}

	for _, candidate := range candidates {
		path := filepath.Join(l.dir, candidate.file)
		if _, err := os.Stat(path); err == nil {
			return path, candidate.kind, nil
		}
	}

	return "", "", types.WrapError(types.ErrConfigNotFound, fmt.Sprintf("no %s or %s in %s",
		consts.ServiceConfigFile, consts.ProjectConfigFile, l.dir))
}

// readParams reads a flat JSON object from a file
func readParams(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.ErrConfigInvalid, fmt.Sprintf("reading %s: %v", path, err))
	}

	params := make(map[string]interface{})
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, types.WrapError(types.ErrConfigInvalid, fmt.Sprintf("parsing %s: %v", path, err))
	}

	return params, nil
}

// applyEnvOverrides replaces values whose key names an existing environment
// variable, coercing the variable's string to the type already in place.
// A failed coercion keeps the file value and logs a warning. The strings
// "null" and "undefined" remove the key entirely.
func (l *Loader) applyEnvOverrides(params map[string]interface{}) {
	for key, current := range params {
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}

		if raw == "null" || raw == "undefined" {
			delete(params, key)
			continue
		}

		switch current.(type) {
		case string, nil:
			params[key] = raw
		case float64:
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				l.log.Warn("ignoring environment override: not a number",
					"key", key, "value", raw)
				continue
			}
			params[key] = parsed
		case bool:
			switch raw {
			case "true":
				params[key] = true
			case "false":
				params[key] = false
			default:
				l.log.Warn("ignoring environment override: not a boolean",
					"key", key, "value", raw)
			}
		default:
			var parsed interface{}
			if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
				l.log.Warn("ignoring environment override: not valid JSON",
					"key", key, "value", raw)
				continue
			}
			params[key] = parsed
		}
	}
}

// validateParams checks the required keys and their types
func validateParams(params map[string]interface{}) error {
	for _, key := range requiredKeys {
		if _, ok := params[key]; !ok {
			return types.WrapError(types.ErrMissingConfigKey, key)
		}
	}

	if _, ok := params[consts.KeyPort].(float64); !ok {
		return types.WrapError(types.ErrConfigInvalid, fmt.Sprintf("%s must be a number", consts.KeyPort))
	}
	for _, key := range []string{consts.KeyName, consts.KeyTitle, consts.KeyCDNLocation} {
		if _, ok := params[key].(string); !ok {
			return types.WrapError(types.ErrConfigInvalid, fmt.Sprintf("%s must be a string", key))
		}
	}

	return nil
}
