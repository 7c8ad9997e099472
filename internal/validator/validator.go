// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var assetSymbolRegex = regexp.MustCompile(`^[A-Za-z0-9]{1,15}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("ledger_type", validateLedgerType)
		_ = v.RegisterValidation("trade_type", validateTradeType)
		_ = v.RegisterValidation("fund_action", validateFundAction)
		_ = v.RegisterValidation("asset_symbol", validateAssetSymbol)
	}
}

func validateLedgerType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "DEPOSIT", "WITHDRAWAL", "BUY", "SELL":
		return true
	}
	return false
}

func validateTradeType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "BUY", "SELL":
		return true
	}
	return false
}

func validateFundAction(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "deposit", "withdraw":
		return true
	}
	return false
}

// validateAssetSymbol accepts a ticker-like symbol other than the cash asset.
func validateAssetSymbol(fl validator.FieldLevel) bool {
	symbol := strings.TrimSpace(fl.Field().String())
	return assetSymbolRegex.MatchString(symbol) && !strings.EqualFold(symbol, "USD")
}
