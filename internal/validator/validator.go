// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// taxIDRegex matches a Chilean RUT: 7 or 8 digits, a hyphen, and a check
// digit that may be 0-9, k or K.
var taxIDRegex = regexp.MustCompile(`^[0-9]{7,8}-[0-9kK]$`)

// providerNameRegex allows letters, digits, spaces, periods and hyphens,
// plus accented vowels and enne.
var providerNameRegex = regexp.MustCompile(`^[a-zA-Z0-9áéíóúÁÉÍÓÚñÑ\s.\-]+$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("budget_period", validateBudgetPeriod)
		_ = v.RegisterValidation("budget_status", validateBudgetStatus)
		_ = v.RegisterValidation("payment_method", validatePaymentMethod)
		_ = v.RegisterValidation("payable_status", validatePayableStatus)
		_ = v.RegisterValidation("tax_id", validateTaxID)
		_ = v.RegisterValidation("provider_name", validateProviderName)
	}
}

func validateBudgetPeriod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monthly", "quarterly", "semiannual", "annual":
		return true
	}
	return false
}

func validateBudgetStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "open", "closed":
		return true
	}
	return false
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "transfer", "cash", "check", "card", "other":
		return true
	}
	return false
}

func validatePayableStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "pending", "paid", "void":
		return true
	}
	return false
}

func validateTaxID(fl validator.FieldLevel) bool {
	return taxIDRegex.MatchString(fl.Field().String())
}

func validateProviderName(fl validator.FieldLevel) bool {
	return providerNameRegex.MatchString(fl.Field().String())
}

// ValidTaxID reports whether s is a well-formed provider tax ID. Exposed for
// service-level checks outside the binding engine.
func ValidTaxID(s string) bool { return taxIDRegex.MatchString(s) }

// ValidProviderName reports whether s only contains the allowed provider
// name characters.
func ValidProviderName(s string) bool { return providerNameRegex.MatchString(s) }
