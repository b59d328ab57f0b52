// Package types provides the numeric and calendar value types shared by all records.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Percent is a percentage or ratio kept at full precision (yields, by-product shares, density).
type Percent = decimal.Decimal

// MustDecimal creates a decimal from a string, panics on error.
// Use only for constants.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Quantity is a fixed-point tonnage with 4 decimal places (scale = 1e4).
//
// Stored as BIGINT (scaled integer); JSON is a plain number with up to 4 decimals.
type Quantity int64

const QuantityScale int64 = 10_000

var decimalScale = decimal.NewFromInt(QuantityScale)

func NewQuantityFromFloat64(v float64) Quantity {
	return Quantity(math.Round(v * float64(QuantityScale)))
}

var (
	maxScaled = decimal.NewFromInt(math.MaxInt64)
	minScaled = decimal.NewFromInt(math.MinInt64)
)

// NewQuantityFromDecimal rounds d half away from zero to 4 decimals.
// Results beyond the Quantity range saturate at its bounds.
func NewQuantityFromDecimal(d decimal.Decimal) Quantity {
	scaled := d.Mul(decimalScale).Round(0)
	switch {
	case scaled.GreaterThan(maxScaled):
		return Quantity(math.MaxInt64)
	case scaled.LessThan(minScaled):
		return Quantity(math.MinInt64)
	}
	return Quantity(scaled.IntPart())
}

// MustQuantity parses s, panics on error. Use only for constants and tests.
func MustQuantity(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Int64Scaled() int64 { return int64(q) }

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

// Decimal returns the exact decimal value of q.
func (q Quantity) Decimal() decimal.Decimal {
	return decimal.New(int64(q), -4)
}

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Add(o Quantity) Quantity { return q + o }

func (q Quantity) Sub(o Quantity) Quantity { return q - o }

// MulPercent returns q × pct / 100, rounded to 4 decimals.
func (q Quantity) MulPercent(pct decimal.Decimal) Quantity {
	return NewQuantityFromDecimal(q.Decimal().Mul(pct).Div(decimal.NewFromInt(100)))
}

// MulDecimal returns q × d, rounded to 4 decimals.
func (q Quantity) MulDecimal(d decimal.Decimal) Quantity {
	return NewQuantityFromDecimal(q.Decimal().Mul(d))
}

// SumQuantities adds all values.
func SumQuantities(values ...Quantity) Quantity {
	var total Quantity
	for _, v := range values {
		total += v
	}
	return total
}

// String returns a decimal string with 4 fractional digits.
func (q Quantity) String() string {
	neg := q < 0
	v := q
	if neg {
		v = -v
	}
	intPart := int64(v) / QuantityScale
	frac := int64(v) % QuantityScale
	if neg {
		return fmt.Sprintf("-%d.%04d", intPart, frac)
	}
	return fmt.Sprintf("%d.%04d", intPart, frac)
}

// MarshalJSON encodes Quantity as JSON number (not string), preserving 4 digits.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string and parses to fixed-point (4 digits).
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	parsed, err := ParseQuantity(string(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ParseQuantity parses a decimal string. Digits beyond the 4th fractional place are truncated.
// Values outside the int64 range of the scaled integer are rejected.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse quantity: %w", err)
		}
		scaled := math.Round(f * float64(QuantityScale))
		if math.IsNaN(scaled) || scaled >= math.MaxInt64 || scaled <= math.MinInt64 {
			return 0, fmt.Errorf("quantity %q out of range", s)
		}
		return Quantity(scaled), nil
	}

	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = strings.TrimPrefix(s, "-")
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimPrefix(s, "+")
	}

	intPartStr, fracStr, _ := strings.Cut(s, ".")
	if intPartStr == "" && fracStr == "" {
		return 0, fmt.Errorf("quantity %q has no digits", s)
	}
	if !allDigits(intPartStr) || !allDigits(fracStr) {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	if intPartStr == "" {
		intPartStr = "0"
	}
	intPart, err := strconv.ParseInt(intPartStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity integer part: %w", err)
	}

	if len(fracStr) > 4 {
		fracStr = fracStr[:4]
	}
	for len(fracStr) < 4 {
		fracStr += "0"
	}
	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity fractional part: %w", err)
	}

	if intPart > (math.MaxInt64-frac)/QuantityScale {
		return 0, fmt.Errorf("quantity %q out of range", s)
	}
	return Quantity(sign * (intPart*QuantityScale + frac)), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// KgToTons converts a kilogram figure from the ERP into tons.
func KgToTons(kg decimal.Decimal) Quantity {
	return NewQuantityFromDecimal(kg.Div(decimal.NewFromInt(1000)))
}
