package model

import (
	"encoding/json"
	"time"

	"cloud.google.com/go/civil"
)

// PaydayEndOfMonth is the payday sentinel meaning "last day of the month".
const PaydayEndOfMonth = 99

// DefaultPayday is used when settings carry no payday.
const DefaultPayday = 25

// Settings is the singleton record stored under mk5_settings.
type Settings struct {
	InitialBalance              int64       `json:"initialBalance"`
	CurrentBalance              int64       `json:"currentBalance"`
	HourlyWage                  int64       `json:"hourlyWage"` // yen per hour, 0 disables time equivalents
	Currency                    string      `json:"currency"`
	Payday                      int         `json:"payday"` // 1-28, or PaydayEndOfMonth
	LastSubscriptionProcessDate civil.Date  `json:"lastSubscriptionProcessDate"`
	CustomCycleStartDate        *civil.Date `json:"customCycleStartDate,omitempty"`
	CreatedAt                   time.Time   `json:"createdAt"`
	UpdatedAt                   time.Time   `json:"updatedAt"`
}

// DefaultSettings returns the first-run settings stamped at now.
func DefaultSettings(now time.Time) Settings {
	return Settings{
		InitialBalance:              100000,
		CurrentBalance:              100000,
		HourlyWage:                  2000,
		Currency:                    "¥",
		Payday:                      DefaultPayday,
		LastSubscriptionProcessDate: civil.DateOf(now),
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
}

type settingsFields Settings

// UnmarshalJSON decodes settings leniently: an empty or unparsable date leaves
// the field unset instead of rejecting the whole record. Dates stored as full
// timestamps keep their calendar day.
func (s *Settings) UnmarshalJSON(data []byte) error {
	aux := struct {
		*settingsFields
		LastSubscriptionProcessDate string  `json:"lastSubscriptionProcessDate"`
		CustomCycleStartDate        *string `json:"customCycleStartDate"`
	}{settingsFields: (*settingsFields)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	s.LastSubscriptionProcessDate = parseDay(aux.LastSubscriptionProcessDate)
	s.CustomCycleStartDate = nil
	if aux.CustomCycleStartDate != nil {
		if d := parseDay(*aux.CustomCycleStartDate); d.IsValid() {
			s.CustomCycleStartDate = &d
		}
	}
	return nil
}

// parseDay returns the zero Date when s holds no recognizable YYYY-MM-DD prefix.
func parseDay(s string) civil.Date {
	if d, err := civil.ParseDate(s); err == nil {
		return d
	}
	if len(s) > 10 {
		if d, err := civil.ParseDate(s[:10]); err == nil {
			return d
		}
	}
	return civil.Date{}
}
