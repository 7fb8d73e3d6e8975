package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mk5-wallet/mk5/internal/history"
	"github.com/mk5-wallet/mk5/internal/ledger"
)

func newExportCommand(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write transaction history as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(store *ledger.Store) error {
				txs := store.Recent()
				if outPath == "" || outPath == "-" {
					return history.WriteTransactions(cmd.OutOrStdout(), txs)
				}

				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				if err := history.WriteTransactions(f, txs); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("closing %s: %w", outPath, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d transaction(s) to %s\n", len(txs), outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from a history CSV, skipping ids already present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			txs, err := history.ReadTransactions(f)
			if err != nil {
				return err
			}

			return a.withLedger(cmd, func(store *ledger.Store) error {
				n, err := store.ImportTransactions(txs)
				if err != nil {
					return err
				}
				settings := store.Settings()
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d transaction(s)\n", n, len(txs))
				fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s\n", formatAmount(settings.Currency, settings.CurrentBalance))
				return nil
			})
		},
	}
}
