package ledger

import (
	"time"

	"go.uber.org/zap"

	"github.com/mk5-wallet/mk5/internal/model"
)

// TransactionDraft holds the user-supplied fields of a new transaction.
type TransactionDraft struct {
	Amount       int64 // magnitude; the sign is taken from Type
	Type         model.TransactionType
	Memo         string
	Satisfaction *int
}

// TransactionUpdate holds the fields to merge into an existing transaction.
// Nil fields are left unchanged.
type TransactionUpdate struct {
	Amount            *int64
	Type              *model.TransactionType
	Memo              *string
	Satisfaction      *int
	ClearSatisfaction bool
	CreatedAt         *time.Time
}

// resolveType picks typ when valid and otherwise infers it from the sign of amount.
func resolveType(typ model.TransactionType, amount int64) model.TransactionType {
	if typ.Valid() {
		return typ
	}
	if amount < 0 {
		return model.TransactionTypeExpense
	}
	return model.TransactionTypeIncome
}

// normalize enforces the sign convention and drops satisfaction from income.
func normalize(tx *model.Transaction) {
	tx.Amount = model.SignedAmount(tx.Amount, tx.Type)
	if tx.Type == model.TransactionTypeIncome {
		tx.Satisfaction = nil
	}
	if tx.Satisfaction != nil {
		v := *tx.Satisfaction
		tx.Satisfaction = &v
	}
}

// AddTransaction records a new transaction dated now, prepends it and applies
// its signed amount to currentBalance.
func (s *Store) AddTransaction(draft TransactionDraft) (model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return model.Transaction{}, ErrNotLoaded
	}

	now := s.now()
	tx := model.Transaction{
		ID:           s.newID(),
		Amount:       draft.Amount,
		Type:         resolveType(draft.Type, draft.Amount),
		Memo:         draft.Memo,
		Satisfaction: draft.Satisfaction,
		CreatedAt:    now,
	}
	normalize(&tx)

	txs := make([]model.Transaction, 0, len(s.transactions)+1)
	txs = append(txs, tx)
	txs = append(txs, s.transactions...)

	settings := s.settings
	settings.CurrentBalance += tx.Amount
	settings.UpdatedAt = now
	s.rebalance(&settings, txs)

	if err := s.commit(&settings, &txs, nil); err != nil {
		return model.Transaction{}, err
	}
	s.log.Info("transaction added",
		zap.String("id", tx.ID),
		zap.String("type", string(tx.Type)),
		zap.Int64("amount", tx.Amount),
		zap.Int64("balance", settings.CurrentBalance))
	return tx, nil
}

// EditTransaction merges update into the transaction with the given id and
// reports whether one matched. Under BalanceStored currentBalance is not
// adjusted, even when the amount changes.
func (s *Store) EditTransaction(txID string, update TransactionUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}

	idx := s.indexOf(txID)
	if idx < 0 {
		return false, nil
	}

	txs := append([]model.Transaction(nil), s.transactions...)
	tx := txs[idx]
	if update.Type != nil && update.Type.Valid() {
		tx.Type = *update.Type
	}
	if update.Amount != nil {
		tx.Amount = *update.Amount
	}
	if update.Memo != nil {
		tx.Memo = *update.Memo
	}
	if update.ClearSatisfaction {
		tx.Satisfaction = nil
	}
	if update.Satisfaction != nil {
		tx.Satisfaction = update.Satisfaction
	}
	if update.CreatedAt != nil {
		tx.CreatedAt = update.CreatedAt.In(s.loc)
	}
	normalize(&tx)
	txs[idx] = tx

	var settings *model.Settings
	if s.policy == BalanceDerived {
		next := s.settings
		s.rebalance(&next, txs)
		next.UpdatedAt = s.now()
		settings = &next
	}

	if err := s.commit(settings, &txs, nil); err != nil {
		return false, err
	}
	s.log.Info("transaction edited", zap.String("id", txID))
	return true, nil
}

// DeleteTransaction removes the transaction with the given id and reports
// whether one matched. Under BalanceStored currentBalance is not adjusted.
func (s *Store) DeleteTransaction(txID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, ErrNotLoaded
	}

	idx := s.indexOf(txID)
	if idx < 0 {
		return false, nil
	}

	txs := make([]model.Transaction, 0, len(s.transactions)-1)
	txs = append(txs, s.transactions[:idx]...)
	txs = append(txs, s.transactions[idx+1:]...)

	var settings *model.Settings
	if s.policy == BalanceDerived {
		next := s.settings
		s.rebalance(&next, txs)
		next.UpdatedAt = s.now()
		settings = &next
	}

	if err := s.commit(settings, &txs, nil); err != nil {
		return false, err
	}
	s.log.Info("transaction deleted", zap.String("id", txID))
	return true, nil
}

// ImportTransactions appends already-dated transactions (e.g. from a history
// export), skipping ids that are already present. Each imported transaction
// is normalized and its amount applied to currentBalance. Returns the number imported.
func (s *Store) ImportTransactions(in []model.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return 0, ErrNotLoaded
	}

	seen := make(map[string]bool, len(s.transactions))
	for _, tx := range s.transactions {
		seen[tx.ID] = true
	}

	settings := s.settings
	var added []model.Transaction
	for _, tx := range in {
		if tx.ID == "" {
			tx.ID = s.newID()
		}
		if seen[tx.ID] {
			continue
		}
		seen[tx.ID] = true
		tx.Type = resolveType(tx.Type, tx.Amount)
		normalize(&tx)
		if tx.CreatedAt.IsZero() {
			tx.CreatedAt = s.now()
		}
		settings.CurrentBalance += tx.Amount
		added = append(added, tx)
	}
	if len(added) == 0 {
		return 0, nil
	}

	txs := make([]model.Transaction, 0, len(added)+len(s.transactions))
	txs = append(txs, added...)
	txs = append(txs, s.transactions...)
	settings.UpdatedAt = s.now()
	s.rebalance(&settings, txs)

	if err := s.commit(&settings, &txs, nil); err != nil {
		return 0, err
	}
	s.log.Info("transactions imported", zap.Int("count", len(added)))
	return len(added), nil
}

func (s *Store) indexOf(txID string) int {
	for i, tx := range s.transactions {
		if tx.ID == txID {
			return i
		}
	}
	return -1
}
