package ledger

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mk5-wallet/mk5/internal/datecalc"
	"github.com/mk5-wallet/mk5/internal/model"
)

// SubscriptionMemo labels transactions synthesized by accrual.
const SubscriptionMemo = "サブスク日割り"

var (
	daysPerYear   = decimal.NewFromInt(365)
	monthsPerYear = decimal.NewFromInt(12)
)

// SubscriptionDraft holds the user-supplied fields of a new subscription.
type SubscriptionDraft struct {
	Name   string
	Amount int64
	Type   model.SubscriptionType
}

// Accrual describes one accrual pass.
type Accrual struct {
	Days         int
	DailyTotal   int64
	Total        int64
	Transactions []model.Transaction
	Watermark    civil.Date
}

// DailyCost returns the prorated cost of sub for one day, rounded half up:
// round(amount*12/365) for monthly, round(amount/365) for yearly.
func DailyCost(sub model.Subscription) int64 {
	amount := decimal.NewFromInt(sub.Amount)
	if sub.Type == model.SubscriptionYearly {
		return amount.Div(daysPerYear).Round(0).IntPart()
	}
	return amount.Mul(monthsPerYear).Div(daysPerYear).Round(0).IntPart()
}

// DailyTotal sums DailyCost over subs.
func DailyTotal(subs []model.Subscription) int64 {
	var total int64
	for _, sub := range subs {
		total += DailyCost(sub)
	}
	return total
}

// AddSubscription creates a subscription. Its cost is only charged by accrual.
func (s *Store) AddSubscription(draft SubscriptionDraft) (model.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return model.Subscription{}, ErrNotLoaded
	}

	typ := draft.Type
	if typ != model.SubscriptionYearly {
		typ = model.SubscriptionMonthly
	}
	amount := draft.Amount
	if amount < 0 {
		amount = -amount
	}
	sub := model.Subscription{
		ID:        s.newID(),
		Name:      draft.Name,
		Amount:    amount,
		Type:      typ,
		CreatedAt: s.now(),
	}

	subs := append(append([]model.Subscription(nil), s.subscriptions...), sub)
	if err := s.commit(nil, nil, &subs); err != nil {
		return model.Subscription{}, err
	}
	s.log.Info("subscription added",
		zap.String("id", sub.ID),
		zap.String("name", sub.Name),
		zap.Int64("daily_cost", DailyCost(sub)))
	return sub, nil
}

// RemoveSubscription deletes the subscription with the given id and reports whether one matched.
func (s *Store) RemoveSubscription(subID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}

	subs := make([]model.Subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		if sub.ID != subID {
			subs = append(subs, sub)
		}
	}
	if len(subs) == len(s.subscriptions) {
		return false, nil
	}
	if err := s.commit(nil, nil, &subs); err != nil {
		return false, err
	}
	s.log.Info("subscription removed", zap.String("id", subID))
	return true, nil
}

// AccrueSubscriptions materializes one expense per calendar day between the
// watermark (exclusive) and today (inclusive) and moves the watermark to
// today. Running it again on the same day does nothing.
func (s *Store) AccrueSubscriptions() (Accrual, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return Accrual{}, ErrNotLoaded
	}

	now := s.now()
	today := datecalc.Today(now)
	watermark := s.settings.LastSubscriptionProcessDate
	result := Accrual{Watermark: watermark}

	if len(s.subscriptions) == 0 || watermark == today {
		return result, nil
	}

	settings := s.settings
	settings.LastSubscriptionProcessDate = today
	settings.UpdatedAt = now
	result.Watermark = today

	days := datecalc.DaysBetween(watermark, today)
	if days < 0 {
		s.log.Warn("subscription watermark is in the future, resetting",
			zap.String("watermark", watermark.String()),
			zap.String("today", today.String()))
		if err := s.commit(&settings, nil, nil); err != nil {
			return Accrual{Watermark: watermark}, err
		}
		return result, nil
	}

	daily := DailyTotal(s.subscriptions)
	if daily == 0 {
		if err := s.commit(&settings, nil, nil); err != nil {
			return Accrual{Watermark: watermark}, err
		}
		return result, nil
	}

	// Newest day first, matching the prepend order of the collection.
	batch := make([]model.Transaction, 0, days)
	for n := days; n >= 1; n-- {
		batch = append(batch, model.Transaction{
			ID:             s.newID(),
			Amount:         -daily,
			Type:           model.TransactionTypeExpense,
			Memo:           SubscriptionMemo,
			IsSubscription: true,
			CreatedAt:      datecalc.Midnight(watermark.AddDays(n), s.loc),
		})
	}

	txs := make([]model.Transaction, 0, len(batch)+len(s.transactions))
	txs = append(txs, batch...)
	txs = append(txs, s.transactions...)

	total := daily * int64(days)
	settings.CurrentBalance -= total
	s.rebalance(&settings, txs)

	if err := s.commit(&settings, &txs, nil); err != nil {
		return Accrual{Watermark: watermark}, err
	}

	result.Days = days
	result.DailyTotal = daily
	result.Total = total
	result.Transactions = batch
	s.log.Info("subscriptions accrued",
		zap.Int("days", days),
		zap.Int64("daily_total", daily),
		zap.Int64("total", total))
	return result, nil
}
