package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mk5-wallet/mk5/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("payday", func(fl validator.FieldLevel) bool {
		day := fl.Field().Int()
		return (day >= 1 && day <= 28) || day == model.PaydayEndOfMonth
	})
	return v
}

type transactionInput struct {
	Amount       int64 `validate:"gt=0"`
	Satisfaction *int  `validate:"omitnil,min=1,max=5"`
}

type transactionEditInput struct {
	Amount       *int64  `validate:"omitnil,gt=0"`
	Satisfaction *int    `validate:"omitnil,min=1,max=5"`
	Type         *string `validate:"omitnil,oneof=income expense"`
}

type settingsInput struct {
	HourlyWage *int64  `validate:"omitnil,gte=0"`
	Currency   *string `validate:"omitnil,min=1"`
	Payday     *int    `validate:"omitnil,payday"`
}

type subscriptionInput struct {
	Name   string `validate:"required"`
	Amount int64  `validate:"gt=0"`
}

// checkInput validates v and flattens validator errors into one readable message.
func checkInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be at least " + fe.Param()
	case "min", "max":
		if fe.Field() == "Satisfaction" {
			return "satisfaction must be between 1 and 5"
		}
		return field + " is out of range"
	case "required":
		return field + " is required"
	case "payday":
		return "payday must be 1-28 or 99 (end of month)"
	case "oneof":
		return field + " must be one of " + fe.Param()
	}
	return field + " is invalid"
}
