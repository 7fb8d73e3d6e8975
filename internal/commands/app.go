package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mk5-wallet/mk5/internal/config"
	"github.com/mk5-wallet/mk5/internal/kvstore"
	"github.com/mk5-wallet/mk5/internal/ledger"
	"github.com/mk5-wallet/mk5/internal/logging"
)

// app carries the flags and the lazily opened ledger shared by all commands.
type app struct {
	configPath string
	dataDir    string
	backend    string
	clock      func() time.Time

	cfg   *config.Config
	log   *zap.Logger
	kv    kvstore.Store
	store *ledger.Store

	// accrual is the result of the accrual pass run when the ledger was opened.
	accrual ledger.Accrual
}

func defaultDataDir() string {
	if dir := os.Getenv(config.EnvDataDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mk5"
	}
	return filepath.Join(home, ".mk5")
}

// resolveConfig merges the config file, .env, MK5_* variables and flags, in that order.
func (a *app) resolveConfig() (*config.Config, string, error) {
	dataDir := a.dataDir
	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	path := a.configPath
	if path == "" {
		path = filepath.Join(dataDir, config.FileName)
	}

	cfg, err := config.LoadOrDefault(path, dataDir)
	if err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg, filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, "", err
	}
	if a.dataDir != "" {
		cfg.Data.Dir = a.dataDir
	}
	if a.backend != "" {
		cfg.Data.Backend = a.backend
	}
	return cfg, path, nil
}

// withLedger opens the ledger, runs fn against it and closes the store afterwards.
func (a *app) withLedger(cmd *cobra.Command, fn func(*ledger.Store) error) error {
	store, err := a.open(cmd)
	if err != nil {
		return errors.Join(err, a.close())
	}
	return errors.Join(fn(store), a.close())
}

// open loads the ledger and runs subscription accrual, which every activation does.
func (a *app) open(cmd *cobra.Command) (*ledger.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	cfg, _, err := a.resolveConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a.log = log
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy := ledger.BalancePolicy(cfg.Ledger.BalancePolicy)
	if cfg.Ledger.BalancePolicy != "" && !policy.Valid() {
		return nil, fmt.Errorf("unknown balance policy %q", cfg.Ledger.BalancePolicy)
	}

	kv, err := kvstore.Open(cfg.Data.Backend, cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	store := ledger.New(kv,
		ledger.WithClock(a.clock),
		ledger.WithLogger(log),
		ledger.WithBalancePolicy(policy),
		ledger.WithLocation(loc),
	)
	if err := store.Load(); err != nil {
		_ = kvstore.Close(kv)
		return nil, err
	}

	a.cfg, a.kv, a.store = cfg, kv, store

	acc, err := store.AccrueSubscriptions()
	if err != nil {
		return nil, fmt.Errorf("accruing subscriptions: %w", err)
	}
	a.accrual = acc
	if acc.Days > 0 {
		settings := store.Settings()
		fmt.Fprintf(cmd.ErrOrStderr(), "accrued %d day(s) of subscriptions: %s\n",
			acc.Days, formatAmount(settings.Currency, -acc.Total))
	}
	return store, nil
}

func (a *app) close() error {
	var errs []error
	if a.log != nil {
		// Syncing stderr fails on some platforms; nothing useful to report.
		_ = a.log.Sync()
	}
	if a.kv != nil {
		errs = append(errs, kvstore.Close(a.kv))
		a.kv = nil
	}
	a.store = nil
	a.log = nil
	return errors.Join(errs...)
}

// resolveTransaction accepts a full id or an unambiguous prefix such as the short id shown by list.
func resolveTransaction(store *ledger.Store, ref string) (string, error) {
	if _, ok := store.Transaction(ref); ok {
		return ref, nil
	}
	var match string
	for _, tx := range store.Transactions() {
		if !strings.HasPrefix(tx.ID, ref) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("transaction id %q is ambiguous", ref)
		}
		match = tx.ID
	}
	if match == "" {
		return "", fmt.Errorf("transaction %q not found", ref)
	}
	return match, nil
}

// resolveSubscription is resolveTransaction for subscriptions.
func resolveSubscription(store *ledger.Store, ref string) (string, error) {
	var match string
	for _, sub := range store.Subscriptions() {
		if sub.ID == ref {
			return ref, nil
		}
		if !strings.HasPrefix(sub.ID, ref) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("subscription id %q is ambiguous", ref)
		}
		match = sub.ID
	}
	if match == "" {
		return "", fmt.Errorf("subscription %q not found", ref)
	}
	return match, nil
}
