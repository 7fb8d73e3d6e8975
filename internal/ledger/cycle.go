package ledger

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/mk5-wallet/mk5/internal/datecalc"
	"github.com/mk5-wallet/mk5/internal/model"
)

// CycleStart returns midnight (in today's location) of the first day of the
// current pay cycle.
//
// A custom cycle start date wins outright. Otherwise the payday sentinel 99
// starts the cycle on the last day of the previous month, and any other payday
// starts it on that day of this month once reached, or of the previous month
// before then. Paydays past the end of a short month clamp to its last day.
func CycleStart(settings model.Settings, today time.Time) time.Time {
	loc := today.Location()
	if settings.CustomCycleStartDate != nil {
		return datecalc.Midnight(*settings.CustomCycleStartDate, loc)
	}

	payday := settings.Payday
	if payday == 0 {
		payday = model.DefaultPayday
	}

	d := datecalc.Today(today)
	var start civil.Date
	switch {
	case payday == model.PaydayEndOfMonth:
		firstOfMonth := civil.Date{Year: d.Year, Month: d.Month, Day: 1}
		start = firstOfMonth.AddDays(-1)
	case d.Day < datecalc.DayOfMonth(d.Year, d.Month, payday).Day:
		prev := datecalc.AddMonths(civil.Date{Year: d.Year, Month: d.Month, Day: 1}, -1)
		start = datecalc.DayOfMonth(prev.Year, prev.Month, payday)
	default:
		start = datecalc.DayOfMonth(d.Year, d.Month, payday)
	}
	return datecalc.Midnight(start, loc)
}

// Summary aggregates transactions over a window.
type Summary struct {
	Start   time.Time
	End     time.Time // zero means open-ended
	Income  int64
	Expense int64 // absolute
	Balance int64 // Income - Expense
	Count   int
}

// Summarize totals transactions with since <= createdAt, and createdAt < until when until is non-zero.
func Summarize(txs []model.Transaction, since, until time.Time) Summary {
	sum := Summary{Start: since, End: until}
	for _, tx := range txs {
		if tx.CreatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && !tx.CreatedAt.Before(until) {
			continue
		}
		switch tx.Type {
		case model.TransactionTypeIncome:
			sum.Income += tx.Magnitude()
		case model.TransactionTypeExpense:
			sum.Expense += tx.Magnitude()
		}
		sum.Count++
	}
	sum.Balance = sum.Income - sum.Expense
	return sum
}

// CycleSummary totals the current pay cycle.
func (s *Store) CycleSummary() Summary {
	now := s.now()
	settings := s.Settings()
	return Summarize(s.Transactions(), CycleStart(settings, now), time.Time{})
}

// DaySummary totals the given calendar day.
func (s *Store) DaySummary(day civil.Date) Summary {
	start := datecalc.Midnight(day, s.loc)
	end := datecalc.Midnight(day.AddDays(1), s.loc)
	return Summarize(s.Transactions(), start, end)
}
