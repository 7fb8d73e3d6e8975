package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk5-wallet/mk5/internal/config"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var shortID = regexp.MustCompile(`\[([0-9a-f]{8})\]`)

type harness struct {
	t     *testing.T
	dir   string
	clock *fakeClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{config.EnvDataDir, config.EnvBackend, config.EnvBalancePolicy, config.EnvTimeZone, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
	h := &harness{
		t:     t,
		dir:   t.TempDir(),
		clock: &fakeClock{t: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)},
	}
	_, err := h.run("init", "--time-zone", "UTC")
	require.NoError(t, err)
	return h
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCommand(h.clock.Now)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", h.dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestInit_WritesConfigAndSettings(t *testing.T) {
	h := newHarness(t)

	data, err := os.ReadFile(filepath.Join(h.dir, config.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "time_zone: UTC")
	assert.Contains(t, string(data), "backend: file")

	_, err = os.Stat(filepath.Join(h.dir, "mk5_settings.json"))
	require.NoError(t, err)

	out := h.mustRun("settings", "show")
	assert.Contains(t, out, "¥100,000")
	assert.Contains(t, out, "2024-01-10")
	assert.Contains(t, out, "stored")
}

func TestInit_KeepsExistingConfig(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "1000")

	out := h.mustRun("init")
	assert.Contains(t, out, "Initialized mk5")
	assert.NotContains(t, out, "Updated")

	data, err := os.ReadFile(filepath.Join(h.dir, config.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "balance_policy: stored")
	assert.Contains(t, string(data), "time_zone: UTC")

	out = h.mustRun("list")
	assert.Contains(t, out, "Balance: ¥99,000")
}

func TestInit_SavesFlagsIntoExistingConfig(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("--backend", "sqlite", "init", "--balance-policy", "derived")
	assert.Contains(t, out, "Updated")

	data, err := os.ReadFile(filepath.Join(h.dir, config.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "balance_policy: derived")
	assert.Contains(t, string(data), "time_zone: UTC")
	// Flag overrides of other settings are not written back.
	assert.Contains(t, string(data), "backend: file")

	out = h.mustRun("settings", "show")
	assert.Regexp(t, `balance policy:\s+derived`, out)

	_, err = h.run("init", "--balance-policy", "sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown balance policy")
}

func TestAdd_Expense(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "1200", "--memo", "lunch", "--satisfaction", "4")
	assert.Contains(t, out, "Added expense -¥1,200 (36分)")
	assert.Contains(t, out, "Balance: ¥98,800")

	out = h.mustRun("list")
	assert.Contains(t, out, "lunch")
	assert.Contains(t, out, "4/5")
	assert.Contains(t, out, "2024-01-10 12:00")
}

func TestAdd_Income(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "5,000", "--income", "--memo", "bonus")
	assert.Contains(t, out, "Added income ¥5,000 (2.5時間)")
	assert.Contains(t, out, "Balance: ¥105,000")
}

func TestAdd_RejectsBadInput(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero", []string{"add", "0"}, "amount must be greater than 0"},
		{"negative", []string{"add", "--", "-5"}, "amount must be greater than 0"},
		{"not a number", []string{"add", "abc"}, "invalid amount"},
		{"satisfaction", []string{"add", "100", "--satisfaction", "6"}, "satisfaction must be between 1 and 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	out := h.mustRun("list")
	assert.Contains(t, out, "No transactions.")
}

func TestEditAndDelete_StoredPolicyKeepsBalance(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "1200", "--memo", "lunch")
	m := shortID.FindStringSubmatch(out)
	require.Len(t, m, 2)
	ref := m[1]

	out = h.mustRun("edit", ref, "--amount", "500", "--memo", "dinner", "--date", "2024-01-09")
	assert.Contains(t, out, "2024-01-09 00:00 expense -¥500")

	out = h.mustRun("list")
	assert.Contains(t, out, "dinner")
	assert.Contains(t, out, "Balance: ¥98,800")

	out = h.mustRun("delete", ref)
	assert.Contains(t, out, "Deleted")
	assert.Contains(t, out, "Balance unchanged")

	out, err := h.run("verify")
	require.ErrorIs(t, err, errVerifyFailed)
	assert.Contains(t, out, "derived balance: ¥100,000")
	assert.Contains(t, out, "stored balance:  ¥98,800")
}

func TestEdit_UnknownID(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("edit", "nope", "--memo", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSettingsSet(t *testing.T) {
	h := newHarness(t)

	h.mustRun("settings", "set", "--initial-balance", "50000", "--payday", "99", "--hourly-wage", "1000", "--currency", "$")
	out := h.mustRun("settings", "show")
	assert.Contains(t, out, "$50,000")
	assert.Contains(t, out, "end of month")

	_, err := h.run("settings", "set", "--payday", "30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payday must be 1-28 or 99")

	_, err = h.run("settings", "set", "--cycle-start", "soon")
	require.Error(t, err)

	h.mustRun("settings", "set", "--cycle-start", "2024-01-05")
	out = h.mustRun("summary")
	assert.Contains(t, out, "cycle since 2024-01-05")

	h.mustRun("settings", "set", "--cycle-start", "none")
	out = h.mustRun("summary")
	assert.Contains(t, out, "cycle since 2023-12-31")
}

func TestSubscriptions_AccrueOnActivation(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("sub", "add", "Netflix", "1490")
	assert.Contains(t, out, `Added monthly subscription "Netflix" ¥1,490 (¥49/day)`)

	out = h.mustRun("sub", "list")
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "Daily total: ¥49")

	h.clock.Advance(3 * 24 * time.Hour)

	out = h.mustRun("list")
	assert.Contains(t, out, "accrued 3 day(s) of subscriptions: -¥147")
	assert.Equal(t, 3, strings.Count(out, "サブスク日割り"))
	assert.Contains(t, out, "Balance: ¥99,853")

	out = h.mustRun("accrue")
	assert.Contains(t, out, "Nothing to accrue (processed through 2024-01-13)")

	h.mustRun("verify")
}

func TestSubscriptions_Remove(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("sub", "add", "Domain", "3650", "--yearly")
	assert.Contains(t, out, "(¥10/day)")
	m := shortID.FindStringSubmatch(out)
	require.Len(t, m, 2)

	h.mustRun("sub", "rm", m[1])
	out = h.mustRun("sub", "list")
	assert.Contains(t, out, "No subscriptions.")

	_, err := h.run("sub", "add", "", "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestSummary(t *testing.T) {
	h := newHarness(t)

	h.mustRun("add", "1000")
	h.mustRun("add", "3000", "--income")

	out := h.mustRun("summary")
	assert.Contains(t, out, "cycle since 2023-12-25")
	assert.Contains(t, out, "¥3,000")
	assert.Contains(t, out, "¥1,000")
	assert.Contains(t, out, "¥102,000")
	assert.Contains(t, out, "30分")
}

func TestReset(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "1000")

	_, err := h.run("reset")
	require.Error(t, err)

	h.mustRun("reset", "--yes")
	out := h.mustRun("list")
	assert.Contains(t, out, "No transactions.")
	assert.Contains(t, out, "Balance: ¥100,000")
}

func TestExportImport(t *testing.T) {
	src := newHarness(t)
	src.mustRun("add", "1200", "--memo", "lunch, with tea", "--satisfaction", "3")
	src.mustRun("add", "5000", "--income")

	file := filepath.Join(t.TempDir(), "history.csv")
	src.mustRun("export", "--out", file)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,date,type,amount,memo,satisfaction,subscription\n"))

	dst := newHarness(t)
	out := dst.mustRun("import", file)
	assert.Contains(t, out, "Imported 2 of 2")
	assert.Contains(t, out, "Balance: ¥103,800")

	out = dst.mustRun("import", file)
	assert.Contains(t, out, "Imported 0 of 2")

	out = dst.mustRun("list")
	assert.Contains(t, out, "lunch, with tea")
	assert.Contains(t, out, "3/5")
}

func TestBackendFlag_SQLite(t *testing.T) {
	h := newHarness(t)

	h.mustRun("--backend", "sqlite", "add", "700")
	out := h.mustRun("--backend", "sqlite", "list")
	assert.Contains(t, out, "Balance: ¥99,300")

	_, err := os.Stat(filepath.Join(h.dir, "mk5.db"))
	require.NoError(t, err)

	// The file backend is untouched.
	out = h.mustRun("list")
	assert.Contains(t, out, "Balance: ¥100,000")
}
