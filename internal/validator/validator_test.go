package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
)

type tradeRequest struct {
	Type  string `binding:"required,trade_type"`
	Asset string `binding:"required,asset_symbol"`
}

type fundsRequest struct {
	Action string `binding:"required,fund_action"`
}

type logFilter struct {
	Type string `binding:"omitempty,ledger_type"`
}

func TestRegister(t *testing.T) {
	Register()

	tests := []struct {
		name  string
		obj   any
		valid bool
	}{
		{"buy_btc", tradeRequest{Type: "BUY", Asset: "btc"}, true},
		{"sell_usdc", tradeRequest{Type: "SELL", Asset: "USDC"}, true},
		{"deposit_is_not_a_trade", tradeRequest{Type: "DEPOSIT", Asset: "BTC"}, false},
		{"lowercase_trade_type", tradeRequest{Type: "buy", Asset: "BTC"}, false},
		{"cash_asset", tradeRequest{Type: "BUY", Asset: "usd"}, false},
		{"symbol_with_punctuation", tradeRequest{Type: "BUY", Asset: "BTC-USD"}, false},
		{"deposit_action", fundsRequest{Action: "deposit"}, true},
		{"withdraw_action", fundsRequest{Action: "withdraw"}, true},
		{"unknown_action", fundsRequest{Action: "transfer"}, false},
		{"withdrawal_filter", logFilter{Type: "WITHDRAWAL"}, true},
		{"empty_filter", logFilter{}, true},
		{"unknown_filter", logFilter{Type: "REBATE"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.obj)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
