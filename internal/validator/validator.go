// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// symbolRegex matches ticker symbols: 2-10 letters or digits.
// Case is normalized by the services, not rejected here.
var symbolRegex = regexp.MustCompile(`^[A-Za-z0-9]{2,10}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("trade_kind", validateTradeKind)
		_ = v.RegisterValidation("coin_symbol", validateCoinSymbol)
		_ = v.RegisterValidation("user_role", validateUserRole)
	}
}

func validateTradeKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "buy", "sell":
		return true
	}
	return false
}

func validateCoinSymbol(fl validator.FieldLevel) bool {
	return symbolRegex.MatchString(fl.Field().String())
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "user", "admin":
		return true
	}
	return false
}
