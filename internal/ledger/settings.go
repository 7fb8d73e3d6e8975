package ledger

import (
	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/mk5-wallet/mk5/internal/model"
)

// SettingsUpdate holds the settings fields to merge. Nil fields are left unchanged.
type SettingsUpdate struct {
	InitialBalance              *int64
	CurrentBalance              *int64
	HourlyWage                  *int64
	Currency                    *string
	Payday                      *int
	LastSubscriptionProcessDate *civil.Date
	CustomCycleStartDate        *civil.Date
	ClearCustomCycleStart       bool
}

// UpdateSettings shallow-merges update into the settings and stamps updatedAt.
// Values are not validated.
func (s *Store) UpdateSettings(update SettingsUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	next := copySettings(s.settings)
	if update.InitialBalance != nil {
		next.InitialBalance = *update.InitialBalance
	}
	if update.CurrentBalance != nil {
		next.CurrentBalance = *update.CurrentBalance
	}
	if update.HourlyWage != nil {
		next.HourlyWage = *update.HourlyWage
	}
	if update.Currency != nil {
		next.Currency = *update.Currency
	}
	if update.Payday != nil {
		next.Payday = *update.Payday
	}
	if update.LastSubscriptionProcessDate != nil {
		next.LastSubscriptionProcessDate = *update.LastSubscriptionProcessDate
	}
	if update.ClearCustomCycleStart {
		next.CustomCycleStartDate = nil
	}
	if update.CustomCycleStartDate != nil {
		d := *update.CustomCycleStartDate
		next.CustomCycleStartDate = &d
	}
	next.UpdatedAt = s.now()
	s.rebalance(&next, s.transactions)

	if err := s.commit(&next, nil, nil); err != nil {
		return err
	}
	s.log.Info("settings updated", zap.Int64("balance", next.CurrentBalance))
	return nil
}

// ResetData restores default settings and clears all transactions and subscriptions.
func (s *Store) ResetData() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	settings := model.DefaultSettings(s.now())
	txs := []model.Transaction{}
	subs := []model.Subscription{}
	if err := s.commit(&settings, &txs, &subs); err != nil {
		return err
	}
	s.log.Warn("ledger reset")
	return nil
}
