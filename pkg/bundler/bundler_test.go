package bundler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ospreyhq/osprey-cli/pkg/bundler"
	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/logging"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

func newProject(t *testing.T, configFile string) *config.Project {
	t.Helper()

	dir := t.TempDir()
	cfg := `{
		"NAME": "layouts",
		"TITLE": "Layouts Service",
		"PORT": 9000,
		"CDN_LOCATION": "https://cdn.example.com/services/layouts"
	}`
	if err := os.WriteFile(filepath.Join(dir, configFile), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	project, err := config.NewLoader(dir, logging.NewNopLogger()).Load()
	if err != nil {
		t.Fatal(err)
	}
	return project
}

func writeSource(t *testing.T, project *config.Project, rel, content string) {
	t.Helper()
	path := filepath.Join(project.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestEntriesServiceProject(t *testing.T) {
	project := newProject(t, "services.config.json")
	writeSource(t, project, "src/client/index.ts", "export {}")
	writeSource(t, project, "src/provider/index.js", "")
	// no demo entry

	b := bundler.New(project, logging.NewNopLogger())
	entries := b.Entries()

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(entries), entries)
	}
	if !strings.HasSuffix(entries[0], filepath.Join("src", "client", "index.ts")) {
		t.Errorf("first entry = %q", entries[0])
	}
	if !strings.HasSuffix(entries[1], filepath.Join("src", "provider", "index.js")) {
		t.Errorf("second entry = %q", entries[1])
	}
}

func TestEntriesApplicationProject(t *testing.T) {
	project := newProject(t, "project.config.json")
	writeSource(t, project, "src/app/index.tsx", "export {}")
	// service part names are ignored for applications
	writeSource(t, project, "src/client/index.ts", "export {}")

	b := bundler.New(project, logging.NewNopLogger())
	entries := b.Entries()

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1: %v", len(entries), entries)
	}
	if !strings.HasSuffix(entries[0], filepath.Join("src", "app", "index.tsx")) {
		t.Errorf("entry = %q", entries[0])
	}
}

func TestBundleDebug(t *testing.T) {
	project := newProject(t, "services.config.json")
	writeSource(t, project, "src/client/index.js", `console.log("hello");`)

	b := bundler.New(project, logging.NewNopLogger())
	if err := b.Bundle(context.Background(), types.ModeDebug); err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}

	out := filepath.Join(project.Dir, "dist", "client", "index.js")
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("bundle output missing: %v", err)
	}
	if _, err := os.Stat(out + ".map"); err != nil {
		t.Errorf("debug build should write a sourcemap: %v", err)
	}
}

func TestBundleDeployMinifies(t *testing.T) {
	project := newProject(t, "services.config.json")
	writeSource(t, project, "src/client/index.js",
		"const greeting = \"hello\";\nconsole.log(greeting);\n")

	b := bundler.New(project, logging.NewNopLogger())
	if err := b.Bundle(context.Background(), types.ModeDeploy); err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}

	out := filepath.Join(project.Dir, "dist", "client", "index.js")
	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("bundle output missing: %v", err)
	}
	if strings.Contains(string(content), "greeting") {
		t.Error("deploy build should minify identifiers")
	}
	if _, err := os.Stat(out + ".map"); err == nil {
		t.Error("deploy build should not write a sourcemap")
	}
}

func TestBundleReportsSyntaxErrors(t *testing.T) {
	project := newProject(t, "services.config.json")
	writeSource(t, project, "src/client/index.js", "const {")

	b := bundler.New(project, logging.NewNopLogger())
	err := b.Bundle(context.Background(), types.ModeDebug)
	if !errors.Is(err, types.ErrBuildFailed) {
		t.Fatalf("expected ErrBuildFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "index.js") {
		t.Errorf("error should name the offending file: %v", err)
	}
}

func TestBundleNoEntries(t *testing.T) {
	project := newProject(t, "services.config.json")

	b := bundler.New(project, logging.NewNopLogger())
	if err := b.Bundle(context.Background(), types.ModeDebug); err != nil {
		t.Errorf("a project without sources should bundle as a no-op, got %v", err)
	}
}
