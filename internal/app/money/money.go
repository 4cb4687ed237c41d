// Package money converts decimal amounts to integer minor units and back.
package money

import (
	"bytes"
	"encoding/json"
	"github.com/shopspring/decimal"
	"math"
	"regexp"
	"strings"
	"walletledger/internal/app/apperr"
)

// Scale is the number of fractional digits in a decimal amount.
const Scale = 2

var grammar = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ParseMinorUnits converts a non-negative decimal string with at most two
// fractional digits into minor units. Anything else is rejected, never rounded.
func ParseMinorUnits(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if !grammar.MatchString(s) {
		return 0, apperr.ErrInvalidAmountFormat
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, apperr.ErrInvalidAmountFormat
	}

	v := d.Shift(Scale).BigInt()
	if !v.IsInt64() {
		return 0, apperr.ErrInvalidAmountFormat
	}

	return v.Int64(), nil
}

// Apply adds the signed delta to balance. A result outside int64 is rejected
// with apperr.ErrInvalidAmount.
func Apply(balance, delta int64) (int64, error) {
	if (delta > 0 && balance > math.MaxInt64-delta) || (delta < 0 && balance < math.MinInt64-delta) {
		return 0, apperr.ErrInvalidAmount
	}
	return balance + delta, nil
}

// FormatMinorUnits renders minor units as a decimal string with exactly two
// fractional digits. Negative values keep their sign.
func FormatMinorUnits(v int64) string {
	return decimal.New(v, -Scale).StringFixed(Scale)
}

// Normalize canonicalizes a decimal string, "100" becomes "100.00".
func Normalize(s string) (string, error) {
	v, err := ParseMinorUnits(s)
	if err != nil {
		return "", err
	}
	return FormatMinorUnits(v), nil
}

// Input is a decimal amount accepted from JSON either as a string or as a
// number. The literal text is kept so parsing stays exact.
type Input string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (in *Input) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return apperr.ErrInvalidAmountFormat
		}
		*in = Input(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return apperr.ErrInvalidAmountFormat
	}
	*in = Input(n.String())

	return nil
}

// MinorUnits parses the input.
func (in Input) MinorUnits() (int64, error) {
	return ParseMinorUnits(string(in))
}
