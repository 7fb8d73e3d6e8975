package model

import "time"

// TransactionType classifies a transaction as money in or money out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is one entry in mk5_transactions.
type Transaction struct {
	ID             string          `json:"id"`
	Amount         int64           `json:"amount"` // negative = expense, positive = income
	Type           TransactionType `json:"type"`
	Memo           string          `json:"memo"`
	Satisfaction   *int            `json:"satisfaction,omitempty"` // 1-5, expenses only
	IsSubscription bool            `json:"isSubscription,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"` // also the transaction date
}

// SignedAmount returns amount with the sign implied by typ.
// The sign of amount itself is ignored.
func SignedAmount(amount int64, typ TransactionType) int64 {
	if amount < 0 {
		amount = -amount
	}
	if typ == TransactionTypeExpense {
		return -amount
	}
	return amount
}

// Magnitude returns the absolute amount of the transaction.
func (t Transaction) Magnitude() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
