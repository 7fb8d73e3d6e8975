package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// LifeTime is an amount of money expressed as hours of work at an hourly wage.
type LifeTime struct {
	Hours decimal.Decimal
}

// LifeTimeOf converts amount (sign ignored) into working time at hourlyWage.
// It reports false when the wage is not positive.
func LifeTimeOf(amount, hourlyWage int64) (LifeTime, bool) {
	if hourlyWage <= 0 {
		return LifeTime{}, false
	}
	if amount < 0 {
		amount = -amount
	}
	return LifeTime{Hours: decimal.NewFromInt(amount).Div(decimal.NewFromInt(hourlyWage))}, true
}

// Minutes returns the total time in whole minutes, rounded.
func (l LifeTime) Minutes() int64 {
	return l.Hours.Mul(minutesPerHour).Round(0).IntPart()
}

// HoursMinutes splits the time into whole hours and the rounded remaining minutes.
func (l LifeTime) HoursMinutes() (int64, int64) {
	h := l.Hours.Floor()
	m := l.Hours.Sub(h).Mul(minutesPerHour).Round(0).IntPart()
	return h.IntPart(), m
}

// String renders minutes under one hour ("45分") and hours to one decimal otherwise ("2.5時間").
func (l LifeTime) String() string {
	if l.Hours.LessThan(decimal.NewFromInt(1)) {
		return fmt.Sprintf("%d分", l.Minutes())
	}
	return l.Hours.StringFixed(1) + "時間"
}
