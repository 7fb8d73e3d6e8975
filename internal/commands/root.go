package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mk5-wallet/mk5/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(time.Now)
}

func newRootCommand(clock func() time.Time) *cobra.Command {
	a := &app{clock: clock}

	rootCmd := &cobra.Command{
		Use:     "mk5",
		Short:   "Personal wallet that counts spending in hours of life",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default <data-dir>/mk5.yaml)")
	flags.StringVar(&a.dataDir, "data-dir", "", "data directory (default ~/.mk5)")
	flags.StringVar(&a.backend, "backend", "", "storage backend: file, sqlite or memory")

	rootCmd.AddCommand(
		newInitCommand(a),
		newAddCommand(a),
		newEditCommand(a),
		newDeleteCommand(a),
		newListCommand(a),
		newSettingsCommand(a),
		newSubCommand(a),
		newAccrueCommand(a),
		newSummaryCommand(a),
		newVerifyCommand(a),
		newResetCommand(a),
		newExportCommand(a),
		newImportCommand(a),
	)

	return rootCmd
}
