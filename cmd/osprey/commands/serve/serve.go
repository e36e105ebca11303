package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/common"
	"github.com/ospreyhq/osprey-cli/pkg/server"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dev server without launching the runtime",
	Long: `Serve the project's resources and build output on the configured
port, rewriting manifests for local development and pushing reload
events to connected clients when files change.

No bundling or runtime launch happens; use start for the full loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := common.NewSession()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hub := server.NewHub(s.Log)
		srv := server.New(s.Project, s.Rewriter, hub, s.Log)

		watcher, err := server.NewWatcher(s.Project, hub, nil, s.Log)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()

		serverErr := make(chan error, 1)
		go func() { serverErr <- srv.Start() }()

		fmt.Printf("Serving %s at %s\n", s.Project.Name(), srv.URL())
		fmt.Println("Press Ctrl+C to stop")

		select {
		case err := <-serverErr:
			return err
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
