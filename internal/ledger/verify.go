package ledger

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/mk5-wallet/mk5/internal/datecalc"
	"github.com/mk5-wallet/mk5/internal/model"
)

// Issue describes a single consistency problem in the ledger.
type Issue struct {
	Check       string
	ID          string
	Description string
}

func (e Issue) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s", e.Check, e.Description)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Check, e.ID, e.Description)
}

// Report is the result of Verify.
type Report struct {
	StoredBalance  int64
	DerivedBalance int64
	Issues         []Issue
}

// Drift is how far the stored balance is from the sum of transactions.
func (r Report) Drift() int64 {
	return r.StoredBalance - r.DerivedBalance
}

// OK reports whether no issues were found.
func (r Report) OK() bool {
	return len(r.Issues) == 0
}

// Verify checks the ledger for balance drift and malformed records.
func (s *Store) Verify() Report {
	settings := s.Settings()
	return Check(settings, s.Transactions(), s.Subscriptions(), datecalc.Today(s.now()))
}

// Check validates settings, transactions and subscriptions as of today.
func Check(settings model.Settings, txs []model.Transaction, subs []model.Subscription, today civil.Date) Report {
	r := Report{
		StoredBalance:  settings.CurrentBalance,
		DerivedBalance: DerivedBalance(settings.InitialBalance, txs),
	}

	if r.Drift() != 0 {
		r.Issues = append(r.Issues, Issue{
			Check:       "balance",
			Description: fmt.Sprintf("stored balance %d != initial + transactions %d (drift %d)", r.StoredBalance, r.DerivedBalance, r.Drift()),
		})
	}

	if p := settings.Payday; p != 0 && p != model.PaydayEndOfMonth && (p < 1 || p > 28) {
		r.Issues = append(r.Issues, Issue{
			Check:       "payday",
			Description: fmt.Sprintf("payday %d outside 1-28 and not %d", p, model.PaydayEndOfMonth),
		})
	}

	if wm := settings.LastSubscriptionProcessDate; wm.After(today) {
		r.Issues = append(r.Issues, Issue{
			Check:       "watermark",
			Description: fmt.Sprintf("subscription watermark %s is after today %s", wm, today),
		})
	}

	seen := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if seen[tx.ID] {
			r.Issues = append(r.Issues, Issue{Check: "id", ID: tx.ID, Description: "duplicate transaction id"})
		}
		seen[tx.ID] = true

		if !tx.Type.Valid() {
			r.Issues = append(r.Issues, Issue{Check: "type", ID: tx.ID, Description: fmt.Sprintf("unknown type %q", tx.Type)})
		} else if tx.Amount != model.SignedAmount(tx.Amount, tx.Type) {
			r.Issues = append(r.Issues, Issue{Check: "sign", ID: tx.ID, Description: fmt.Sprintf("%s with amount %d", tx.Type, tx.Amount)})
		}

		if tx.Satisfaction != nil {
			if tx.Type == model.TransactionTypeIncome {
				r.Issues = append(r.Issues, Issue{Check: "satisfaction", ID: tx.ID, Description: "satisfaction on income"})
			} else if v := *tx.Satisfaction; v < 1 || v > 5 {
				r.Issues = append(r.Issues, Issue{Check: "satisfaction", ID: tx.ID, Description: fmt.Sprintf("satisfaction %d outside 1-5", v)})
			}
		}
	}

	for _, sub := range subs {
		if sub.Amount <= 0 {
			r.Issues = append(r.Issues, Issue{Check: "subscription", ID: sub.ID, Description: fmt.Sprintf("non-positive amount %d", sub.Amount)})
		}
		if sub.Type != model.SubscriptionMonthly && sub.Type != model.SubscriptionYearly {
			r.Issues = append(r.Issues, Issue{Check: "subscription", ID: sub.ID, Description: fmt.Sprintf("unknown type %q", sub.Type)})
		}
	}

	return r
}
