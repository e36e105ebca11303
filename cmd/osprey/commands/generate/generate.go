package generate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/common"
	"github.com/ospreyhq/osprey-cli/pkg/manifest"
)

// Cmd represents the generate command
var Cmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate per-channel provider manifests",
	Long: `Rewrite the provider manifest source once per release channel and
write the results into dist/provider.

Channels come from channels.yaml in the project directory; without the
file, the stable and staging defaults apply.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := common.NewSession()
		if err != nil {
			return err
		}

		gen := manifest.NewGenerator(s.Project, s.Rewriter, s.Log)
		written, err := gen.Generate(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("✓ Generated %d channel manifest(s)\n", len(written))
		for _, path := range written {
			fmt.Printf("  %s\n", path)
		}
		return nil
	},
}
