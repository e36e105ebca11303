package launch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/common"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// Cmd represents the launch command
var Cmd = &cobra.Command{
	Use:   "launch [version-or-url]",
	Short: "Launch the runtime against a provider manifest",
	Long: `Launch the runtime against a manifest and wait until the application
closes.

The argument is a provider version token (local, stable, staging,
testing or a release like 2.3.4) or a full manifest URL. Without an
argument the local dev server's provider manifest is used, so a serve
or start session should already be running.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := common.NewSession()
		if err != nil {
			return err
		}

		token := consts.TokenLocal
		if len(args) == 1 {
			token = args[0]
		}

		target, err := s.Providers.Resolve(token, "")
		if err != nil {
			return err
		}

		if !s.Launcher.Installed() {
			return types.WrapError(types.ErrRuntimeNotInstalled, "cannot launch")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Launching %s\n", target)
		app, err := s.Launcher.Launch(ctx, target)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Runtime launched (pid %d)\n", app.PID())

		select {
		case exitErr := <-app.Done():
			if exitErr != nil {
				return fmt.Errorf("application exited: %w", exitErr)
			}
			fmt.Println("Application closed")
		case <-ctx.Done():
			fmt.Println("\nStopping runtime...")
			if err := app.Stop(context.Background()); err != nil {
				return err
			}
		}
		return nil
	},
}
