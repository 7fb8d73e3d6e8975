package commands

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mk5-wallet/mk5/internal/ledger"
	"github.com/mk5-wallet/mk5/internal/model"
)

var printer = message.NewPrinter(language.Japanese)

const dateLayout = "2006-01-02"

// formatAmount renders a signed amount with the currency symbol and digit grouping, e.g. "-¥1,200".
func formatAmount(currency string, amount int64) string {
	if amount < 0 {
		return printer.Sprintf("-%s%d", currency, -amount)
	}
	return printer.Sprintf("%s%d", currency, amount)
}

func formatLifeTime(amount int64, settings model.Settings) string {
	lt, ok := ledger.LifeTimeOf(amount, settings.HourlyWage)
	if !ok {
		return "-"
	}
	return lt.String()
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func formatSatisfaction(s *int) string {
	if s == nil {
		return "-"
	}
	return printer.Sprintf("%d/5", *s)
}
