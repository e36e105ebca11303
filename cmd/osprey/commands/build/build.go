package build

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/common"
	"github.com/ospreyhq/osprey-cli/pkg/bundler"
	"github.com/ospreyhq/osprey-cli/pkg/consts"
	"github.com/ospreyhq/osprey-cli/pkg/types"
)

// Cmd represents the build command
var Cmd = &cobra.Command{
	Use:   "build",
	Short: "Bundle sources for production",
	Long: `Bundle the project's sources with esbuild in deploy mode: minified,
no sourcemaps, output under dist/.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := common.NewSession()
		if err != nil {
			return err
		}

		b := bundler.New(s.Project, s.Log)
		entries := b.Entries()
		if len(entries) == 0 {
			fmt.Println("No bundle entries found under src/, nothing to do")
			return nil
		}

		if err := b.Bundle(cmd.Context(), types.ModeDeploy); err != nil {
			return err
		}

		fmt.Printf("✓ Bundled %d entry point(s) into %s\n",
			len(entries), filepath.Join(s.Project.Dir, consts.DistDir))
		return nil
	},
}
