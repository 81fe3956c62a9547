package utils

import (
	"regexp"
	"time"

	"homeease/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// RegisterValidators adds the booking specific rules to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return registerRules(v)
}

func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"ymd":      validateDate,
		"hhmm":     validateClock,
		"currency": validateCurrency,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.TimeLayout, fl.Field().String())
	return err == nil
}

func validateCurrency(fl validator.FieldLevel) bool {
	return currencyPattern.MatchString(fl.Field().String())
}
