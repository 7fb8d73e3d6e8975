package commands

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/mk5-wallet/mk5/internal/datecalc"
	"github.com/mk5-wallet/mk5/internal/id"
	"github.com/mk5-wallet/mk5/internal/ledger"
	"github.com/mk5-wallet/mk5/internal/model"
)

func parseAmount(s string) (int64, error) {
	amount, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

// parseDate accepts YYYY-MM-DD (local midnight) or a full RFC 3339 timestamp.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if d, err := civil.ParseDate(s); err == nil {
		return datecalc.Midnight(d, loc), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t.In(loc), nil
}

func newAddCommand(a *app) *cobra.Command {
	var income bool
	var memo string
	var satisfaction int

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an expense, or income with --income",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			in := transactionInput{Amount: amount}
			if cmd.Flags().Changed("satisfaction") {
				in.Satisfaction = &satisfaction
			}
			if err := checkInput(in); err != nil {
				return err
			}

			draft := ledger.TransactionDraft{
				Amount:       amount,
				Type:         model.TransactionTypeExpense,
				Memo:         memo,
				Satisfaction: in.Satisfaction,
			}
			if income {
				draft.Type = model.TransactionTypeIncome
			}

			return a.withLedger(cmd, func(store *ledger.Store) error {
				tx, err := store.AddTransaction(draft)
				if err != nil {
					return err
				}
				settings := store.Settings()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Added %s %s (%s) [%s]\n",
					tx.Type, formatAmount(settings.Currency, tx.Amount),
					formatLifeTime(tx.Amount, settings), id.Short(tx.ID))
				fmt.Fprintf(out, "Balance: %s\n", formatAmount(settings.Currency, settings.CurrentBalance))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&income, "income", false, "record income instead of an expense")
	cmd.Flags().StringVar(&memo, "memo", "", "memo")
	cmd.Flags().IntVar(&satisfaction, "satisfaction", 0, "satisfaction 1-5 (expenses only)")

	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var amount int64
	var memo string
	var satisfaction int
	var clearSatisfaction bool
	var date string
	var typ string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var in transactionEditInput
			if flags.Changed("amount") {
				in.Amount = &amount
			}
			if flags.Changed("satisfaction") {
				in.Satisfaction = &satisfaction
			}
			if flags.Changed("type") {
				in.Type = &typ
			}
			if err := checkInput(in); err != nil {
				return err
			}

			return a.withLedger(cmd, func(store *ledger.Store) error {
				txID, err := resolveTransaction(store, args[0])
				if err != nil {
					return err
				}

				upd := ledger.TransactionUpdate{
					Amount:            in.Amount,
					Satisfaction:      in.Satisfaction,
					ClearSatisfaction: clearSatisfaction,
				}
				if in.Type != nil {
					t := model.TransactionType(*in.Type)
					upd.Type = &t
				}
				if flags.Changed("memo") {
					upd.Memo = &memo
				}
				if date != "" {
					at, err := parseDate(date, store.Location())
					if err != nil {
						return err
					}
					upd.CreatedAt = &at
				}

				if _, err := store.EditTransaction(txID, upd); err != nil {
					return err
				}
				tx, _ := store.Transaction(txID)
				settings := store.Settings()
				fmt.Fprintf(cmd.OutOrStdout(), "Updated [%s] %s %s %s\n",
					id.Short(tx.ID), formatTime(tx.CreatedAt), tx.Type, formatAmount(settings.Currency, tx.Amount))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "new amount")
	cmd.Flags().StringVar(&memo, "memo", "", "new memo")
	cmd.Flags().IntVar(&satisfaction, "satisfaction", 0, "new satisfaction 1-5")
	cmd.Flags().BoolVar(&clearSatisfaction, "clear-satisfaction", false, "remove the satisfaction rating")
	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&typ, "type", "", "new type: income or expense")

	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(store *ledger.Store) error {
				txID, err := resolveTransaction(store, args[0])
				if err != nil {
					return err
				}
				if _, err := store.DeleteTransaction(txID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted [%s]\n", id.Short(txID))
				if store.Policy() == ledger.BalanceStored {
					fmt.Fprintln(cmd.OutOrStdout(), "Balance unchanged (stored balance policy)")
				}
				return nil
			})
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(store *ledger.Store) error {
				settings := store.Settings()
				txs := store.Recent()
				if limit > 0 && len(txs) > limit {
					txs = txs[:limit]
				}

				out := cmd.OutOrStdout()
				if len(txs) == 0 {
					fmt.Fprintln(out, "No transactions.")
				} else {
					w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tLIFE\tSAT\tMEMO")
					for _, tx := range txs {
						memo := tx.Memo
						if tx.IsSubscription {
							memo += " *"
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
							id.Short(tx.ID), formatTime(tx.CreatedAt), tx.Type,
							formatAmount(settings.Currency, tx.Amount),
							formatLifeTime(tx.Amount, settings),
							formatSatisfaction(tx.Satisfaction), memo)
					}
					if err := w.Flush(); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "Balance: %s\n", formatAmount(settings.Currency, settings.CurrentBalance))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of transactions to show (0 for all)")

	return cmd
}
