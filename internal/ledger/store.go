// Package ledger owns the settings, transactions and subscriptions of a wallet
// and enforces the balance, pay-cycle and subscription accrual rules.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mk5-wallet/mk5/internal/datecalc"
	"github.com/mk5-wallet/mk5/internal/id"
	"github.com/mk5-wallet/mk5/internal/kvstore"
	"github.com/mk5-wallet/mk5/internal/model"
)

// Keys under which the ledger is persisted.
const (
	KeySettings      = "mk5_settings"
	KeyTransactions  = "mk5_transactions"
	KeySubscriptions = "mk5_subscriptions"
)

// ErrNotLoaded is returned by mutations invoked before Load has completed.
var ErrNotLoaded = errors.New("ledger not loaded")

// BalancePolicy decides how currentBalance follows transaction edits and deletes.
type BalancePolicy string

const (
	// BalanceStored applies a delta on create and accrual only; edits and
	// deletes leave currentBalance untouched.
	BalanceStored BalancePolicy = "stored"
	// BalanceDerived recomputes currentBalance as initialBalance plus the sum
	// of all transaction amounts after every mutation.
	BalanceDerived BalancePolicy = "derived"
)

// Valid reports whether p is a known policy.
func (p BalancePolicy) Valid() bool {
	return p == BalanceStored || p == BalanceDerived
}

// Store is the ledger state manager. Build one per process with New and call Load before use.
type Store struct {
	mu     sync.Mutex
	kv     kvstore.Store
	clock  func() time.Time
	newID  id.Generator
	log    *zap.Logger
	policy BalancePolicy
	loc    *time.Location

	loaded        bool
	settings      model.Settings
	transactions  []model.Transaction
	subscriptions []model.Subscription
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator sets the id source for new records.
func WithIDGenerator(gen id.Generator) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithBalancePolicy sets the balance policy. Unknown policies are ignored.
func WithBalancePolicy(p BalancePolicy) Option {
	return func(s *Store) {
		if p.Valid() {
			s.policy = p
		}
	}
}

// WithLocation sets the time zone that calendar days are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates an unloaded Store over kv.
func New(kv kvstore.Store, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		clock:  time.Now,
		newID:  id.New,
		log:    zap.NewNop(),
		policy: BalanceStored,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) now() time.Time {
	return s.clock().In(s.loc)
}

// Load hydrates the store from kv. Missing or malformed entries fall back to
// defaults. Only a failing kv read is returned as an error.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	settings := model.DefaultSettings(now)
	if err := s.read(KeySettings, &settings); err != nil {
		if !errors.Is(err, errMalformed) {
			return err
		}
		settings = model.DefaultSettings(now)
	}
	if !settings.LastSubscriptionProcessDate.IsValid() {
		s.log.Warn("missing subscription watermark, starting from today")
		settings.LastSubscriptionProcessDate = datecalc.Today(now)
	}

	txs, err := readList[model.Transaction](s, KeyTransactions)
	if err != nil {
		return err
	}
	subs, err := readList[model.Subscription](s, KeySubscriptions)
	if err != nil {
		return err
	}

	s.settings = settings
	s.transactions = txs
	s.subscriptions = subs
	s.loaded = true

	s.log.Debug("ledger loaded",
		zap.Int("transactions", len(txs)),
		zap.Int("subscriptions", len(subs)),
		zap.Int64("balance", settings.CurrentBalance))
	return nil
}

var errMalformed = errors.New("malformed value")

// read decodes key into dst, leaving dst alone when the key is absent.
func (s *Store) read(key string, dst any) error {
	data, ok, err := s.kv.Get(key)
	if err != nil {
		return fmt.Errorf("loading %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.log.Warn("discarding malformed value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: %s", errMalformed, key)
	}
	return nil
}

// readList decodes a JSON array stored under key one element at a time.
// Elements that fail to decode are logged and skipped so one bad record does
// not cost the rest. A value that is not an array at all is dropped entirely.
func readList[T any](s *Store, key string) ([]T, error) {
	var raw []json.RawMessage
	if err := s.read(key, &raw); err != nil {
		if errors.Is(err, errMalformed) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, elem := range raw {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			s.log.Warn("skipping malformed record",
				zap.String("key", key), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) write(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.kv.Set(key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// commit persists the given state and, once every write succeeded, makes it current.
// A nil argument means that collection is unchanged.
//
// Writes are not atomic across keys. Settings go last, so a failed settings
// write leaves the stored collections ahead of the stored balance; Verify
// reports that as balance drift.
func (s *Store) commit(settings *model.Settings, txs *[]model.Transaction, subs *[]model.Subscription) error {
	if txs != nil {
		if err := s.write(KeyTransactions, nonNil(*txs)); err != nil {
			return err
		}
	}
	if subs != nil {
		if err := s.write(KeySubscriptions, nonNil(*subs)); err != nil {
			return err
		}
	}
	if settings != nil {
		if err := s.write(KeySettings, settings); err != nil {
			return err
		}
	}
	if txs != nil {
		s.transactions = *txs
	}
	if subs != nil {
		s.subscriptions = *subs
	}
	if settings != nil {
		s.settings = *settings
	}
	return nil
}

// nonNil makes empty collections encode as [] rather than null.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Flush writes all three collections to kv.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	settings, txs, subs := s.settings, s.transactions, s.subscriptions
	return s.commit(&settings, &txs, &subs)
}

// IsLoading reports whether Load has not completed yet.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loaded
}

// Policy returns the balance policy in effect.
func (s *Store) Policy() BalancePolicy {
	return s.policy
}

// Location returns the time zone calendar days are evaluated in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Settings returns a copy of the settings.
func (s *Store) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySettings(s.settings)
}

// Transactions returns the transactions in stored order (newest insert first).
func (s *Store) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Transaction(nil), s.transactions...)
}

// Recent returns the transactions ordered by createdAt, newest first.
func (s *Store) Recent() []model.Transaction {
	txs := s.Transactions()
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
	return txs
}

// Transaction returns the transaction with the given id.
func (s *Store) Transaction(txID string) (model.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.transactions {
		if tx.ID == txID {
			return tx, true
		}
	}
	return model.Transaction{}, false
}

// Subscriptions returns the subscriptions in stored order.
func (s *Store) Subscriptions() []model.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Subscription(nil), s.subscriptions...)
}

func copySettings(in model.Settings) model.Settings {
	if in.CustomCycleStartDate != nil {
		d := *in.CustomCycleStartDate
		in.CustomCycleStartDate = &d
	}
	return in
}

// DerivedBalance returns initialBalance plus the sum of all signed amounts.
func DerivedBalance(initial int64, txs []model.Transaction) int64 {
	total := initial
	for _, tx := range txs {
		total += tx.Amount
	}
	return total
}

// rebalance applies the derived policy to settings for txs.
func (s *Store) rebalance(settings *model.Settings, txs []model.Transaction) {
	if s.policy == BalanceDerived {
		settings.CurrentBalance = DerivedBalance(settings.InitialBalance, txs)
	}
}
