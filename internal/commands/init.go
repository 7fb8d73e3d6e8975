package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mk5-wallet/mk5/internal/config"
	"github.com/mk5-wallet/mk5/internal/ledger"
)

func newInitCommand(a *app) *cobra.Command {
	var policy string
	var timeZone string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory, config file and default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a, policy, timeZone)
		},
	}

	cmd.Flags().StringVar(&policy, "balance-policy", "", "balance policy: stored or derived")
	cmd.Flags().StringVar(&timeZone, "time-zone", "", "IANA time zone used for dates (default local)")

	return cmd
}

func runInit(cmd *cobra.Command, a *app, policy, timeZone string) error {
	if policy != "" && !ledger.BalancePolicy(policy).Valid() {
		return fmt.Errorf("unknown balance policy %q", policy)
	}
	apply := func(cfg *config.Config) error {
		if policy != "" {
			cfg.Ledger.BalancePolicy = policy
		}
		if timeZone != "" {
			cfg.Ledger.TimeZone = timeZone
			if _, err := cfg.Location(); err != nil {
				return err
			}
		}
		return nil
	}

	cfg, path, err := a.resolveConfig()
	if err != nil {
		return err
	}
	if err := apply(cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	_, statErr := os.Stat(path)
	switch {
	case errors.Is(statErr, fs.ErrNotExist):
		if err := config.Save(path, cfg); err != nil {
			return err
		}
	case statErr != nil:
		return fmt.Errorf("checking config: %w", statErr)
	case policy != "" || timeZone != "":
		// Merge into the file as written; env and flag overrides stay out of it.
		onDisk, err := config.Load(path)
		if err != nil {
			return err
		}
		if err := apply(onDisk); err != nil {
			return err
		}
		if err := config.Save(path, onDisk); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", path)
	}

	return a.withLedger(cmd, func(store *ledger.Store) error {
		if err := store.Flush(); err != nil {
			return fmt.Errorf("writing settings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized mk5 at %s (%s backend)\n", cfg.Data.Dir, cfg.Data.Backend)
		return nil
	})
}
