package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mk5-wallet/mk5/internal/datecalc"
	"github.com/mk5-wallet/mk5/internal/ledger"
)

func newAccrueCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "accrue",
		Short: "Book prorated subscription costs up to today",
		Long: `Book prorated subscription costs up to today.

Every command that opens the ledger already does this; accrue only reports the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(store *ledger.Store) error {
				settings := store.Settings()
				acc := a.accrual
				out := cmd.OutOrStdout()
				if acc.Days == 0 {
					fmt.Fprintf(out, "Nothing to accrue (processed through %s)\n", acc.Watermark)
					return nil
				}
				fmt.Fprintf(out, "Accrued %d day(s) at %s/day: %s\n",
					acc.Days, formatAmount(settings.Currency, acc.DailyTotal),
					formatAmount(settings.Currency, -acc.Total))
				fmt.Fprintf(out, "Processed through %s\n", acc.Watermark)
				return nil
			})
		},
	}
}

func newSummaryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the balance, the current pay cycle and today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(store *ledger.Store) error {
				settings := store.Settings()
				cycle := store.CycleSummary()
				day := store.DaySummary(datecalc.Today(store.Now()))
				cur := settings.Currency

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "balance:\t%s\t%s\n", formatAmount(cur, settings.CurrentBalance),
					formatLifeTime(settings.CurrentBalance, settings))
				fmt.Fprintf(w, "cycle since %s:\t\t\n", cycle.Start.Format(dateLayout))
				fmt.Fprintf(w, "  income:\t%s\t\n", formatAmount(cur, cycle.Income))
				fmt.Fprintf(w, "  expense:\t%s\t%s\n", formatAmount(cur, cycle.Expense),
					formatLifeTime(cycle.Expense, settings))
				fmt.Fprintf(w, "  net:\t%s\t\n", formatAmount(cur, cycle.Balance))
				fmt.Fprintf(w, "  transactions:\t%d\t\n", cycle.Count)
				fmt.Fprintf(w, "today:\t\t\n")
				fmt.Fprintf(w, "  income:\t%s\t\n", formatAmount(cur, day.Income))
				fmt.Fprintf(w, "  expense:\t%s\t%s\n", formatAmount(cur, day.Expense),
					formatLifeTime(day.Expense, settings))
				return w.Flush()
			})
		},
	}
}

// errVerifyFailed makes verify exit non-zero without repeating the report.
var errVerifyFailed = errors.New("ledger has consistency issues")

func newVerifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the ledger for balance drift and malformed records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(store *ledger.Store) error {
				settings := store.Settings()
				report := store.Verify()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "stored balance:  %s\n", formatAmount(settings.Currency, report.StoredBalance))
				fmt.Fprintf(out, "derived balance: %s\n", formatAmount(settings.Currency, report.DerivedBalance))
				if report.OK() {
					fmt.Fprintln(out, "OK")
					return nil
				}
				for _, issue := range report.Issues {
					fmt.Fprintf(out, "- %s\n", issue.Error())
				}
				return fmt.Errorf("%w: %d issue(s)", errVerifyFailed, len(report.Issues))
			})
		},
	}
}

func newResetCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all transactions and subscriptions and restore default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset erases all data; pass --yes to confirm")
			}
			return a.withLedger(cmd, func(store *ledger.Store) error {
				if err := store.ResetData(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All data reset")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")

	return cmd
}
