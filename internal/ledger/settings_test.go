package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk5-wallet/mk5/internal/kvstore"
	"github.com/mk5-wallet/mk5/internal/model"
)

func TestUpdateSettings_Merge(t *testing.T) {
	clock := &fakeClock{t: at(2025, 3, 10, 9, 0)}
	s := newTestStore(t, kvstore.NewMemoryStore(), clock)
	before := s.Settings()

	clock.Advance(time.Hour)
	require.NoError(t, s.UpdateSettings(SettingsUpdate{
		HourlyWage: ptr(int64(1500)),
		Payday:     ptr(model.PaydayEndOfMonth),
	}))

	got := s.Settings()
	assert.Equal(t, int64(1500), got.HourlyWage)
	assert.Equal(t, 99, got.Payday)
	assert.Equal(t, before.Currency, got.Currency)
	assert.Equal(t, before.CurrentBalance, got.CurrentBalance)
	assert.True(t, got.UpdatedAt.Equal(clock.Now()))
	assert.True(t, got.CreatedAt.Equal(before.CreatedAt))
}

func TestUpdateSettings_NoValidation(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore(), &fakeClock{t: at(2025, 3, 10, 9, 0)})
	require.NoError(t, s.UpdateSettings(SettingsUpdate{HourlyWage: ptr(int64(-5)), Payday: ptr(31)}))
	assert.Equal(t, int64(-5), s.Settings().HourlyWage)
	assert.Equal(t, 31, s.Settings().Payday)
}

func TestUpdateSettings_CustomCycleStart(t *testing.T) {
	s := newTestStore(t, kvstore.NewMemoryStore(), &fakeClock{t: at(2025, 3, 10, 9, 0)})

	require.NoError(t, s.UpdateSettings(SettingsUpdate{CustomCycleStartDate: ptr(day(2025, 3, 3))}))
	require.NotNil(t, s.Settings().CustomCycleStartDate)
	assert.Equal(t, day(2025, 3, 3), *s.Settings().CustomCycleStartDate)

	require.NoError(t, s.UpdateSettings(SettingsUpdate{ClearCustomCycleStart: true}))
	assert.Nil(t, s.Settings().CustomCycleStartDate)
}

func TestResetData(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	clock := &fakeClock{t: at(2025, 3, 10, 9, 0)}
	s := newTestStore(t, kv, clock)

	_, err := s.AddTransaction(TransactionDraft{Amount: 500, Type: model.TransactionTypeExpense})
	require.NoError(t, err)
	_, err = s.AddSubscription(SubscriptionDraft{Name: "video", Amount: 1490})
	require.NoError(t, err)
	require.NoError(t, s.UpdateSettings(SettingsUpdate{HourlyWage: ptr(int64(3000))}))

	clock.Advance(24 * time.Hour)
	require.NoError(t, s.ResetData())

	assert.Equal(t, model.DefaultSettings(clock.Now()), s.Settings())
	assert.Empty(t, s.Transactions())
	assert.Empty(t, s.Subscriptions())

	reloaded := newTestStore(t, kv, clock)
	assert.Empty(t, reloaded.Transactions())
	assert.Empty(t, reloaded.Subscriptions())
	assert.Equal(t, int64(2000), reloaded.Settings().HourlyWage)
}
