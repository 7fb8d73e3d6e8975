package ledger

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk5-wallet/mk5/internal/kvstore"
	"github.com/mk5-wallet/mk5/internal/model"
)

func TestCycleStart(t *testing.T) {
	tests := []struct {
		name   string
		payday int
		custom *civil.Date
		today  time.Time
		want   time.Time
	}{
		{"before payday", 25, nil, at(2025, 3, 10, 15, 4), at(2025, 2, 25, 0, 0)},
		{"after payday", 25, nil, at(2025, 3, 26, 15, 4), at(2025, 3, 25, 0, 0)},
		{"on payday", 25, nil, at(2025, 3, 25, 0, 1), at(2025, 3, 25, 0, 0)},
		{"january rolls back a year", 25, nil, at(2025, 1, 10, 9, 0), at(2024, 12, 25, 0, 0)},
		{"end of month", 99, nil, at(2025, 3, 15, 9, 0), at(2025, 2, 28, 0, 0)},
		{"end of month leap year", 99, nil, at(2024, 3, 15, 9, 0), at(2024, 2, 29, 0, 0)},
		{"end of month january", 99, nil, at(2025, 1, 31, 9, 0), at(2024, 12, 31, 0, 0)},
		{"unset payday defaults to 25", 0, nil, at(2025, 3, 10, 9, 0), at(2025, 2, 25, 0, 0)},
		{"payday 1", 1, nil, at(2025, 3, 1, 9, 0), at(2025, 3, 1, 0, 0)},
		{"payday past short month clamps", 30, nil, at(2025, 3, 10, 9, 0), at(2025, 2, 28, 0, 0)},
		{"clamped payday reached", 30, nil, at(2025, 2, 28, 9, 0), at(2025, 2, 28, 0, 0)},
		{"custom start wins", 25, &civil.Date{Year: 2025, Month: time.March, Day: 3}, at(2025, 3, 10, 9, 0), at(2025, 3, 3, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := model.Settings{Payday: tt.payday, CustomCycleStartDate: tt.custom}
			got := CycleStart(settings, tt.today)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.Equal(t, jst, got.Location())
		})
	}
}

func TestCycleStart_Idempotent(t *testing.T) {
	settings := model.Settings{Payday: 25}
	today := at(2025, 3, 10, 15, 4)
	assert.Equal(t, CycleStart(settings, today), CycleStart(settings, today))
}

func TestSummarize(t *testing.T) {
	since := at(2025, 3, 1, 0, 0)
	until := at(2025, 3, 2, 0, 0)
	txs := []model.Transaction{
		{Amount: -500, Type: model.TransactionTypeExpense, CreatedAt: at(2025, 3, 1, 12, 0)},
		{Amount: 3000, Type: model.TransactionTypeIncome, CreatedAt: at(2025, 3, 1, 0, 0)},
		{Amount: -700, Type: model.TransactionTypeExpense, CreatedAt: at(2025, 2, 28, 23, 59)},
		{Amount: -900, Type: model.TransactionTypeExpense, CreatedAt: at(2025, 3, 2, 0, 0)},
	}

	open := Summarize(txs, since, time.Time{})
	assert.Equal(t, int64(3000), open.Income)
	assert.Equal(t, int64(1400), open.Expense)
	assert.Equal(t, int64(1600), open.Balance)
	assert.Equal(t, 3, open.Count)

	bounded := Summarize(txs, since, until)
	assert.Equal(t, int64(500), bounded.Expense)
	assert.Equal(t, 2, bounded.Count)
}

func TestCycleSummary(t *testing.T) {
	clock := &fakeClock{t: at(2025, 3, 20, 9, 0)}
	s := newTestStore(t, kvstore.NewMemoryStore(), clock)

	old, err := s.AddTransaction(TransactionDraft{Amount: 800, Type: model.TransactionTypeExpense})
	require.NoError(t, err)
	_, err = s.EditTransaction(old.ID, TransactionUpdate{CreatedAt: ptr(at(2025, 2, 20, 9, 0))})
	require.NoError(t, err)
	_, err = s.AddTransaction(TransactionDraft{Amount: 1200, Type: model.TransactionTypeExpense})
	require.NoError(t, err)
	_, err = s.AddTransaction(TransactionDraft{Amount: 250000, Type: model.TransactionTypeIncome})
	require.NoError(t, err)

	sum := s.CycleSummary()
	assert.True(t, at(2025, 2, 25, 0, 0).Equal(sum.Start))
	assert.Equal(t, int64(250000), sum.Income)
	assert.Equal(t, int64(1200), sum.Expense)
	assert.Equal(t, int64(248800), sum.Balance)
}

func TestDaySummary(t *testing.T) {
	clock := &fakeClock{t: at(2025, 3, 9, 23, 0)}
	s := newTestStore(t, kvstore.NewMemoryStore(), clock)
	_, err := s.AddTransaction(TransactionDraft{Amount: 400, Type: model.TransactionTypeExpense})
	require.NoError(t, err)

	clock.t = at(2025, 3, 10, 8, 0)
	_, err = s.AddTransaction(TransactionDraft{Amount: 600, Type: model.TransactionTypeExpense})
	require.NoError(t, err)
	_, err = s.AddTransaction(TransactionDraft{Amount: 1000, Type: model.TransactionTypeIncome})
	require.NoError(t, err)

	sum := s.DaySummary(day(2025, 3, 10))
	assert.Equal(t, int64(600), sum.Expense)
	assert.Equal(t, int64(1000), sum.Income)
	assert.Equal(t, 2, sum.Count)
}
