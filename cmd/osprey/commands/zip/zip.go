package zip

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ospreyhq/osprey-cli/cmd/osprey/commands/common"
	"github.com/ospreyhq/osprey-cli/pkg/pack"
)

// Cmd represents the zip command
var Cmd = &cobra.Command{
	Use:   "zip",
	Short: "Package provider files into a zip archive",
	Long: `Collect the provider's resources and build output (res/provider and
dist/provider) into a single zip archive under dist/, ready for upload.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := common.NewSession()
		if err != nil {
			return err
		}

		result, err := pack.New(s.Project, s.Log).Pack(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("✓ Packaged %d file(s) into %s\n", result.Files, result.Path)
		fmt.Printf("  Size:   %s\n", humanize.IBytes(uint64(result.Size)))
		fmt.Printf("  SHA256: %s\n", result.Checksum)
		return nil
	},
}
