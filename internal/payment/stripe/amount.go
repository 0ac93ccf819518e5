package stripe

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {},
	"CLP": {},
	"DJF": {},
	"GNF": {},
	"JPY": {},
	"KMF": {},
	"KRW": {},
	"MGA": {},
	"PYG": {},
	"RWF": {},
	"UGX": {},
	"VND": {},
	"VUV": {},
	"XAF": {},
	"XOF": {},
	"XPF": {},
}

// ToMinorAmount 将主币金额四舍五入换算为最小货币单位。
func ToMinorAmount(amount decimal.Decimal, currency string) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: amount must not be negative", ErrConfigInvalid)
	}
	return amount.Shift(int32(currencyScale(currency))).Round(0).IntPart(), nil
}

// FromMinorAmount 将最小货币单位换算为主币金额。
func FromMinorAmount(minor int64, currency string) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(int32(-currencyScale(currency)))
}

func currencyScale(currency string) int {
	upper := strings.ToUpper(strings.TrimSpace(currency))
	if _, ok := zeroDecimalCurrencies[upper]; ok {
		return 0
	}
	return 2
}
