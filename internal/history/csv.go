// Package history reads and writes transaction history as CSV.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mk5-wallet/mk5/internal/model"
)

// Header is the CSV header for exported history.
const Header = "id,date,type,amount,memo,satisfaction,subscription"

const (
	numFields       = 7
	colID           = 0
	colDate         = 1
	colType         = 2
	colAmount       = 3
	colMemo         = 4
	colSatisfaction = 5
	colSubscription = 6
)

// ReadTransactions reads all transactions from a history CSV reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading history CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txs []model.Transaction
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// WriteTransactions writes transactions to w, including the header.
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range txs {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = tx.ID
	row[colDate] = tx.CreatedAt.Format(time.RFC3339)
	row[colType] = string(tx.Type)
	row[colAmount] = strconv.FormatInt(tx.Amount, 10)
	row[colMemo] = tx.Memo
	if tx.Satisfaction != nil {
		row[colSatisfaction] = strconv.Itoa(*tx.Satisfaction)
	}
	if tx.IsSubscription {
		row[colSubscription] = "true"
	}
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(time.RFC3339, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := strconv.ParseInt(record[colAmount], 10, 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	typ := model.TransactionType(record[colType])
	if typ != "" && !typ.Valid() {
		return model.Transaction{}, fmt.Errorf("unknown type %q", record[colType])
	}

	var satisfaction *int
	if record[colSatisfaction] != "" {
		v, err := strconv.Atoi(record[colSatisfaction])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing satisfaction %q: %w", record[colSatisfaction], err)
		}
		satisfaction = &v
	}

	var isSub bool
	if record[colSubscription] != "" {
		isSub, err = strconv.ParseBool(record[colSubscription])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing subscription %q: %w", record[colSubscription], err)
		}
	}

	return model.Transaction{
		ID:             record[colID],
		Amount:         amount,
		Type:           typ,
		Memo:           record[colMemo],
		Satisfaction:   satisfaction,
		IsSubscription: isSub,
		CreatedAt:      date,
	}, nil
}
