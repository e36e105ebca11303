package start

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/common"
	"github.com/ospreyhq/osprey-cli/pkg/bundler"
	"github.com/ospreyhq/osprey-cli/pkg/health"
	"github.com/ospreyhq/osprey-cli/pkg/server"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

var (
	providerVersion string
	runtimeVersion  string
	servicesMode    string
	noLaunch        bool
)

// readyTimeout bounds how long start waits for the dev server to answer
// health probes before giving up
const readyTimeout = 10 * time.Second

// Cmd represents the start command
var Cmd = &cobra.Command{
	Use:   "start",
	Short: "Bundle, serve and launch the project",
	Long: `Start a development session: bundle the sources, serve the project
with live reload, then launch the runtime against the locally rewritten
demo manifest.

The session ends when the launched application closes or on Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateServicesMode(servicesMode); err != nil {
			return err
		}

		s, err := common.NewSession()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bundle := bundler.New(s.Project, s.Log)
		fmt.Println("Bundling sources...")
		if err := bundle.Bundle(ctx, types.ModeDebug); err != nil {
			return err
		}

		hub := server.NewHub(s.Log)
		srv := server.New(s.Project, s.Rewriter, hub, s.Log)

		watcher, err := server.NewWatcher(s.Project, hub, func(ctx context.Context) error {
			return bundle.Bundle(ctx, types.ModeDebug)
		}, s.Log)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()

		serverErr := make(chan error, 1)
		go func() { serverErr <- srv.Start() }()

		readyCtx, cancelReady := context.WithTimeout(ctx, readyTimeout)
		err = health.NewProbe(s.Log).WaitReady(readyCtx, srv.URL()+"/healthz")
		cancelReady()
		if err != nil {
			return err
		}
		fmt.Printf("Dev server running at %s\n", srv.URL())

		if noLaunch {
			return waitForShutdown(ctx, srv, serverErr)
		}
		if !s.Launcher.Installed() {
			fmt.Println("Runtime launcher not found, serving without launching")
			return waitForShutdown(ctx, srv, serverErr)
		}

		app, err := s.Launcher.Launch(ctx, manifestURL(srv.URL()))
		if err != nil {
			return err
		}
		fmt.Printf("✓ Runtime launched (pid %d)\n", app.PID())

		select {
		case err := <-serverErr:
			if stopErr := app.Stop(context.Background()); stopErr != nil {
				s.Log.Warn("failed to stop runtime", "error", stopErr)
			}
			return err
		case exitErr := <-app.Done():
			if exitErr != nil {
				s.Log.Warn("application exited with an error", "error", exitErr)
			}
			fmt.Println("Application closed")
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			if stopErr := app.Stop(context.Background()); stopErr != nil {
				s.Log.Warn("failed to stop runtime", "error", stopErr)
			}
		}

		return shutdown(srv)
	},
}

func init() {
	Cmd.Flags().StringVar(&providerVersion, "provider-version", "", "override the service provider version (token, semver or URL)")
	Cmd.Flags().StringVar(&runtimeVersion, "runtime-version", "", "override the runtime version (channel or build number)")
	Cmd.Flags().StringVar(&servicesMode, "services", "", "service resolution mode: normal, none or injected")
	Cmd.Flags().BoolVar(&noLaunch, "no-launch", false, "serve and watch without launching the runtime")
}

// validateServicesMode rejects bad --services values before any work starts
func validateServicesMode(mode string) error {
	switch mode {
	case "", "normal", "none", "injected":
		return nil
	}
	return fmt.Errorf("services must be normal, none or injected, got %q", mode)
}

// manifestURL builds the synthesized manifest URL the runtime is launched
// against, carrying the override flags as query parameters
func manifestURL(base string) string {
	q := url.Values{}
	if servicesMode != "" {
		q.Set("services", servicesMode)
	}
	if providerVersion != "" {
		q.Set("providerVersion", providerVersion)
	}
	if runtimeVersion != "" {
		q.Set("runtimeVersion", runtimeVersion)
	}

	target := base + "/manifest"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	return target
}

// waitForShutdown blocks until the server fails or a signal arrives, then
// shuts the server down
func waitForShutdown(ctx context.Context, srv *server.Server, serverErr <-chan error) error {
	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		fmt.Println("\nShutting down...")
	}
	return shutdown(srv)
}

// shutdown stops the dev server with a bounded grace period
func shutdown(srv *server.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
