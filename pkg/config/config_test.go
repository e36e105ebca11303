package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/logging"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

func TestNewConfig(t *testing.T) {
	cfg := config.New()
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
}

func TestConfigSetGet(t *testing.T) {
	cfg := config.New()

	cfg.Set("test.string", "hello")
	if got := cfg.GetString("test.string"); got != "hello" {
		t.Errorf("got %v, want 'hello'", got)
	}

	cfg.Set("test.bool", true)
	if got := cfg.GetBool("test.bool"); !got {
		t.Error("got false, want true")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := config.New()
	cfg.SetDefault("test.default", "default_value")

	got := cfg.GetString("test.default")
	if got != "default_value" {
		t.Errorf("got %v, want 'default_value'", got)
	}
}

func TestLoadCLIConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "cli.yaml")

	configContent := `
logging:
  level: debug
  format: json

launcher:
  binary: /opt/osprey/launcher
  resolve_timeout: 5s
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := config.LoadCLIConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("got level=%v, want 'debug'", cfg.Logging.Level)
	}

	if cfg.Logging.Format != "json" {
		t.Errorf("got format=%v, want 'json'", cfg.Logging.Format)
	}

	if cfg.Launcher.Binary != "/opt/osprey/launcher" {
		t.Errorf("got binary=%v, want '/opt/osprey/launcher'", cfg.Launcher.Binary)
	}

	if cfg.Launcher.ResolveTimeout != 5*time.Second {
		t.Errorf("got resolve_timeout=%v, want 5s", cfg.Launcher.ResolveTimeout)
	}

	if cfg.Launcher.StopTimeout != 10*time.Second {
		t.Errorf("got stop_timeout=%v, want default 10s", cfg.Launcher.StopTimeout)
	}
}

func TestLoadCLIConfigDefaults(t *testing.T) {
	cfg, err := config.LoadCLIConfig("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("got level=%v, want default 'info'", cfg.Logging.Level)
	}

	if cfg.Logging.Format != "auto" {
		t.Errorf("got format=%v, want default 'auto'", cfg.Logging.Format)
	}

	if cfg.Launcher.ResolveTimeout != 30*time.Second {
		t.Errorf("got resolve_timeout=%v, want default 30s", cfg.Launcher.ResolveTimeout)
	}
}

// writeProject lays out a project dir with the given config file
func writeProject(t *testing.T, file, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, file), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", file, err)
	}
	return tmpDir
}

const serviceConfig = `{
	"NAME": "layouts",
	"TITLE": "Layouts Service",
	"PORT": 9000,
	"CDN_LOCATION": "https://cdn.example.com/services/layouts",
	"INJECTABLE": true
}`

func TestLoaderServiceProject(t *testing.T) {
	dir := writeProject(t, "services.config.json", serviceConfig)

	loader := config.NewLoader(dir, logging.NewNopLogger())
	project, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load project: %v", err)
	}

	if project.Kind != types.KindService {
		t.Errorf("kind = %v, want service", project.Kind)
	}

	if project.Name() != "layouts" {
		t.Errorf("name = %v, want 'layouts'", project.Name())
	}

	if project.Port() != 9000 {
		t.Errorf("port = %v, want 9000", project.Port())
	}

	if project.CDNLocation() != "https://cdn.example.com/services/layouts" {
		t.Errorf("cdn = %v", project.CDNLocation())
	}

	if !project.Injectable() {
		t.Error("expected injectable")
	}
}

func TestLoaderApplicationProject(t *testing.T) {
	dir := writeProject(t, "project.config.json", `{
		"NAME": "demo-app",
		"TITLE": "Demo App",
		"PORT": 9100,
		"CDN_LOCATION": "https://cdn.example.com/apps/demo"
	}`)

	loader := config.NewLoader(dir, logging.NewNopLogger())
	project, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load project: %v", err)
	}

	if project.Kind != types.KindApplication {
		t.Errorf("kind = %v, want application", project.Kind)
	}

	if project.Injectable() {
		t.Error("expected not injectable by default")
	}
}

func TestLoaderMissingConfig(t *testing.T) {
	loader := config.NewLoader(t.TempDir(), logging.NewNopLogger())

	_, err := loader.Load()
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !types.IsConfigError(err) {
		t.Errorf("expected a config error, got %v", err)
	}
}

func TestLoaderUserOverride(t *testing.T) {
	dir := writeProject(t, "services.config.json", serviceConfig)

	userConfig := `{"PORT": 9999, "EXTRA": "dev-only"}`
	if err := os.WriteFile(filepath.Join(dir, "services.config.user.json"), []byte(userConfig), 0644); err != nil {
		t.Fatalf("failed to write user config: %v", err)
	}

	loader := config.NewLoader(dir, logging.NewNopLogger())
	project, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load project: %v", err)
	}

	if project.Port() != 9999 {
		t.Errorf("port = %v, want user override 9999", project.Port())
	}

	if project.Name() != "layouts" {
		t.Errorf("name = %v, base values must survive the merge", project.Name())
	}

	if project.GetString("EXTRA") != "dev-only" {
		t.Errorf("EXTRA = %v, want 'dev-only'", project.GetString("EXTRA"))
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		verify func(t *testing.T, p *config.Project)
	}{
		{
			name:  "string passthrough",
			key:   "NAME",
			value: "from-env",
			verify: func(t *testing.T, p *config.Project) {
				if p.Name() != "from-env" {
					t.Errorf("name = %v, want 'from-env'", p.Name())
				}
			},
		},
		{
			name:  "number coercion",
			key:   "PORT",
			value: "9200",
			verify: func(t *testing.T, p *config.Project) {
				if p.Port() != 9200 {
					t.Errorf("port = %v, want 9200", p.Port())
				}
			},
		},
		{
			name:  "bool true",
			key:   "INJECTABLE",
			value: "true",
			verify: func(t *testing.T, p *config.Project) {
				if !p.Injectable() {
					t.Error("expected injectable")
				}
			},
		},
		{
			name:  "bool false",
			key:   "INJECTABLE",
			value: "false",
			verify: func(t *testing.T, p *config.Project) {
				if p.Injectable() {
					t.Error("expected not injectable")
				}
			},
		},
		{
			name:  "bad bool keeps original",
			key:   "INJECTABLE",
			value: "yes",
			verify: func(t *testing.T, p *config.Project) {
				if !p.Injectable() {
					t.Error("failed coercion must keep the file value")
				}
			},
		},
		{
			name:  "bad number keeps original",
			key:   "PORT",
			value: "not-a-port",
			verify: func(t *testing.T, p *config.Project) {
				if p.Port() != 9000 {
					t.Errorf("port = %v, failed coercion must keep 9000", p.Port())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProject(t, "services.config.json", serviceConfig)
			t.Setenv(tt.key, tt.value)

			loader := config.NewLoader(dir, logging.NewNopLogger())
			project, err := loader.Load()
			if err != nil {
				t.Fatalf("failed to load project: %v", err)
			}

			tt.verify(t, project)
		})
	}
}

func TestLoaderEnvNullRemovesKey(t *testing.T) {
	dir := writeProject(t, "services.config.json", serviceConfig)
	t.Setenv("INJECTABLE", "null")

	loader := config.NewLoader(dir, logging.NewNopLogger())
	project, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load project: %v", err)
	}

	if _, ok := project.Get("INJECTABLE"); ok {
		t.Error("null sentinel must remove the key")
	}
}

func TestLoaderMemoizes(t *testing.T) {
	dir := writeProject(t, "services.config.json", serviceConfig)

	loader := config.NewLoader(dir, logging.NewNopLogger())
	first, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load project: %v", err)
	}

	// Rewriting the file must not affect later loads
	changed := `{"NAME": "changed", "TITLE": "t", "PORT": 1, "CDN_LOCATION": "x"}`
	if err := os.WriteFile(filepath.Join(dir, "services.config.json"), []byte(changed), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	second, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}

	if second.Name() != first.Name() {
		t.Errorf("name = %v, want memoized %v", second.Name(), first.Name())
	}
}

func TestLoaderRequiredKeys(t *testing.T) {
	dir := writeProject(t, "services.config.json", `{
		"NAME": "layouts",
		"TITLE": "Layouts Service",
		"CDN_LOCATION": "https://cdn.example.com"
	}`)

	loader := config.NewLoader(dir, logging.NewNopLogger())
	_, err := loader.Load()
	if err == nil {
		t.Fatal("expected error for missing PORT")
	}

	if !types.IsConfigError(err) {
		t.Errorf("expected a config error, got %v", err)
	}
}

func TestLoaderPortMustBeNumber(t *testing.T) {
	dir := writeProject(t, "services.config.json", `{
		"NAME": "layouts",
		"TITLE": "Layouts Service",
		"PORT": "9000",
		"CDN_LOCATION": "https://cdn.example.com"
	}`)

	loader := config.NewLoader(dir, logging.NewNopLogger())
	_, err := loader.Load()
	if err == nil {
		t.Fatal("expected error for string PORT")
	}
}
