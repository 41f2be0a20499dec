// README: Custom binding validators (currency codes, money amounts) registered on gin's validator.
package handlers

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	registerOnce sync.Once
	registerErr  error

	// NUMERIC(19,2): 17 integer digits.
	maxAmount = decimal.New(1, 17)
)

// RegisterValidators installs the custom tags used by request payloads. It is
// safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		v.RegisterCustomTypeFunc(decimalString, decimal.Decimal{})
		if registerErr = v.RegisterValidation("currency", validCurrency); registerErr != nil {
			return
		}
		registerErr = v.RegisterValidation("money", validMoney)
	})
	return registerErr
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func decimalString(v reflect.Value) interface{} {
	if d, ok := v.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// validCurrency accepts three upper-case ASCII letters.
func validCurrency(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// validMoney accepts amounts that fit NUMERIC(19,2) without rounding; trailing zeros are fine.
func validMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.Equal(d.Truncate(2)) && d.Abs().LessThan(maxAmount)
}
