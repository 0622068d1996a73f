package utils

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"move_portfolio/internal/domain/entity"
)

// FormatRawAmount converts an integer base-unit amount into a decimal display
// string without going through floating point. The integer part is exact for
// any magnitude; the fractional part is left-padded to `decimals` digits and
// trailing zeros are stripped.
// Example: raw="1234500000", decimals=8 => "12.345"
func FormatRawAmount(raw string, decimals uint8) (string, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok || amount.Sign() < 0 {
		return "0", entity.ErrMalformedAmount
	}

	if decimals == 0 {
		return amount.String(), nil
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	integerPart, fractionalPart := new(big.Int).QuoRem(amount, divisor, new(big.Int))

	if fractionalPart.Sign() == 0 {
		return integerPart.String(), nil
	}

	fractionalStr := fractionalPart.String()
	if pad := int(decimals) - len(fractionalStr); pad > 0 {
		fractionalStr = strings.Repeat("0", pad) + fractionalStr
	}
	fractionalStr = strings.TrimRight(fractionalStr, "0")

	return integerPart.String() + "." + fractionalStr, nil
}

// FormatRawAmountOrZero applies the repository-wide fallback policy for
// malformed amounts: render as "0".
func FormatRawAmountOrZero(raw string, decimals uint8) string {
	s, err := FormatRawAmount(raw, decimals)
	if err != nil {
		return "0"
	}
	return s
}

// RawToDecimal parses a base-unit amount into a decimal scaled by 10^-decimals.
func RawToDecimal(raw string, decimals uint8) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero, entity.ErrMalformedAmount
	}
	return d.Shift(-int32(decimals)), nil
}

// DisplayToDecimal parses a display string ("1,234.5" or "1234.5") into a
// decimal, tolerating thousands separators. Malformed input yields zero.
func DisplayToDecimal(display string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(display, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}
