package commands

import (
	"fmt"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/mk5-wallet/mk5/internal/ledger"
	"github.com/mk5-wallet/mk5/internal/model"
)

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change ledger settings",
	}
	cmd.AddCommand(newSettingsShowCommand(a), newSettingsSetCommand(a))
	return cmd
}

func newSettingsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(store *ledger.Store) error {
				s := store.Settings()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "initial balance:\t%s\n", formatAmount(s.Currency, s.InitialBalance))
				fmt.Fprintf(w, "current balance:\t%s\n", formatAmount(s.Currency, s.CurrentBalance))
				fmt.Fprintf(w, "hourly wage:\t%s\n", formatAmount(s.Currency, s.HourlyWage))
				fmt.Fprintf(w, "currency:\t%s\n", s.Currency)
				fmt.Fprintf(w, "payday:\t%s\n", formatPayday(s.Payday))
				cycleStart := "-"
				if s.CustomCycleStartDate != nil {
					cycleStart = s.CustomCycleStartDate.String()
				}
				fmt.Fprintf(w, "custom cycle start:\t%s\n", cycleStart)
				fmt.Fprintf(w, "subscriptions processed through:\t%s\n", s.LastSubscriptionProcessDate)
				fmt.Fprintf(w, "balance policy:\t%s\n", store.Policy())
				return w.Flush()
			})
		},
	}
}

func formatPayday(day int) string {
	switch day {
	case model.PaydayEndOfMonth:
		return "end of month"
	case 0:
		return fmt.Sprintf("%d (default)", model.DefaultPayday)
	}
	return fmt.Sprintf("%d", day)
}

func newSettingsSetCommand(a *app) *cobra.Command {
	var (
		initialBalance int64
		hourlyWage     int64
		currency       string
		payday         int
		cycleStart     string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Long: `Change one or more settings.

--initial-balance also resets the current balance to the same value.
--cycle-start takes YYYY-MM-DD, or "none" to go back to payday-based cycles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var in settingsInput
			var upd ledger.SettingsUpdate

			if flags.Changed("initial-balance") {
				upd.InitialBalance = &initialBalance
				upd.CurrentBalance = &initialBalance
			}
			if flags.Changed("hourly-wage") {
				in.HourlyWage = &hourlyWage
				upd.HourlyWage = &hourlyWage
			}
			if flags.Changed("currency") {
				in.Currency = &currency
				upd.Currency = &currency
			}
			if flags.Changed("payday") {
				in.Payday = &payday
				upd.Payday = &payday
			}
			if flags.Changed("cycle-start") {
				if cycleStart == "none" || cycleStart == "" {
					upd.ClearCustomCycleStart = true
				} else {
					d, err := civil.ParseDate(cycleStart)
					if err != nil {
						return fmt.Errorf("invalid cycle start %q (want YYYY-MM-DD)", cycleStart)
					}
					upd.CustomCycleStartDate = &d
				}
			}
			if err := checkInput(in); err != nil {
				return err
			}

			return a.withLedger(cmd, func(store *ledger.Store) error {
				if err := store.UpdateSettings(upd); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Settings updated")
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&initialBalance, "initial-balance", 0, "starting balance")
	cmd.Flags().Int64Var(&hourlyWage, "hourly-wage", 0, "hourly wage (0 hides time equivalents)")
	cmd.Flags().StringVar(&currency, "currency", "", "currency symbol")
	cmd.Flags().IntVar(&payday, "payday", 0, "payday 1-28, or 99 for the last day of the month")
	cmd.Flags().StringVar(&cycleStart, "cycle-start", "", "custom cycle start date (YYYY-MM-DD or none)")

	return cmd
}
