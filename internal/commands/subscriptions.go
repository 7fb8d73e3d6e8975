package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mk5-wallet/mk5/internal/id"
	"github.com/mk5-wallet/mk5/internal/ledger"
	"github.com/mk5-wallet/mk5/internal/model"
)

func newSubCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sub",
		Aliases: []string{"subscription"},
		Short:   "Manage recurring subscriptions",
	}
	cmd.AddCommand(newSubAddCommand(a), newSubRemoveCommand(a), newSubListCommand(a))
	return cmd
}

func newSubAddCommand(a *app) *cobra.Command {
	var yearly bool

	cmd := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Add a monthly subscription, or yearly with --yearly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if err := checkInput(subscriptionInput{Name: args[0], Amount: amount}); err != nil {
				return err
			}
			draft := ledger.SubscriptionDraft{
				Name:   args[0],
				Amount: amount,
				Type:   model.SubscriptionMonthly,
			}
			if yearly {
				draft.Type = model.SubscriptionYearly
			}

			return a.withLedger(cmd, func(store *ledger.Store) error {
				sub, err := store.AddSubscription(draft)
				if err != nil {
					return err
				}
				settings := store.Settings()
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s subscription %q %s (%s/day) [%s]\n",
					sub.Type, sub.Name, formatAmount(settings.Currency, sub.Amount),
					formatAmount(settings.Currency, ledger.DailyCost(sub)), id.Short(sub.ID))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yearly, "yearly", false, "amount is charged once a year")

	return cmd
}

func newSubRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a subscription",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(store *ledger.Store) error {
				subID, err := resolveSubscription(store, args[0])
				if err != nil {
					return err
				}
				if _, err := store.RemoveSubscription(subID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed subscription [%s]\n", id.Short(subID))
				return nil
			})
		},
	}
}

func newSubListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscriptions with their daily cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(store *ledger.Store) error {
				settings := store.Settings()
				subs := store.Subscriptions()
				out := cmd.OutOrStdout()
				if len(subs) == 0 {
					fmt.Fprintln(out, "No subscriptions.")
					return nil
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tTYPE\tAMOUNT\tPER DAY")
				for _, sub := range subs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						id.Short(sub.ID), sub.Name, sub.Type,
						formatAmount(settings.Currency, sub.Amount),
						formatAmount(settings.Currency, ledger.DailyCost(sub)))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Daily total: %s\n", formatAmount(settings.Currency, ledger.DailyTotal(subs)))
				return nil
			})
		},
	}
}
