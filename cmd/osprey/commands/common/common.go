// Package common holds shared state and wiring used by all osprey commands.
package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ospreyhq/osprey-cli/pkg/config"
	"github.com/ospreyhq/osprey-cli/pkg/launcher"
	"github.com/ospreyhq/osprey-cli/pkg/logging"
	"github.com/ospreyhq/osprey-cli/pkg/manifest"
	"github.com/ospreyhq/osprey-cli/pkg/resolver"
	"github.com/ospreyhq/osprey-cli/pkg/template"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

var (
	// CfgFile is the path to the CLI config file, set by the root command.
	CfgFile string

	// ProjectDir is the project directory flag value, set by the root command.
	ProjectDir string

	// GlobalConfig is the loaded CLI configuration.
	GlobalConfig *config.CLIConfig

	// GlobalLogger is the logger shared by all commands.
	GlobalLogger types.Logger
)

// InitConfig loads the CLI configuration and initializes the global logger.
// It is called from the root command's PersistentPreRunE so every command
// runs with config and logging in place.
func InitConfig(cfgFile, projectDir string) error {
	CfgFile = cfgFile
	ProjectDir = projectDir

	path := cfgFile
	if path == "" {
		// Fall back to ~/.osprey/cli.yaml when it exists.
		if home, err := os.UserHomeDir(); err == nil {
			candidate := filepath.Join(home, ".osprey", "cli.yaml")
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	var err error
	GlobalConfig, err = config.LoadCLIConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logging.InitForCLI(GlobalConfig.Logging.Level, GlobalConfig.Logging.Format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	GlobalLogger = logging.GetGlobalLogger()

	return nil
}

// Session is the object graph shared by commands that operate on a project.
type Session struct {
	Project   *config.Project
	Engine    *template.Engine
	Providers *resolver.Provider
	Runtimes  *resolver.Runtime
	Rewriter  *manifest.Rewriter
	Launcher  *launcher.Exec
	Log       types.Logger
}

// NewSession loads the project from the configured directory and wires the
// components most commands need. Commands that only touch part of the graph
// still go through here so flag handling stays in one place.
func NewSession() (*Session, error) {
	dir := ProjectDir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	log := GlobalLogger
	project, err := config.NewLoader(abs, log).Load()
	if err != nil {
		return nil, err
	}

	binary := GlobalConfig.Launcher.Binary
	if binary == "" {
		binary = project.LauncherBinary()
	}
	exec := launcher.NewExec(launcher.Options{
		Binary:      binary,
		StopTimeout: GlobalConfig.Launcher.StopTimeout,
	}, log)

	engine := template.NewEngine(log)
	providers := resolver.NewProvider(project, engine, log)
	runtimes := resolver.NewRuntime(exec, GlobalConfig.Launcher.ResolveTimeout, log)
	rewriter := manifest.NewRewriter(project, engine, providers, runtimes, log)

	return &Session{
		Project:   project,
		Engine:    engine,
		Providers: providers,
		Runtimes:  runtimes,
		Rewriter:  rewriter,
		Launcher:  exec,
		Log:       log,
	}, nil
}
