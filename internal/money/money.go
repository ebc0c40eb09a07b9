package money

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// ParseMinor converts a decimal major-unit amount ("10.00", "3.5") into integer
// minor units, rounding to the nearest cent.
func ParseMinor(input string) (int64, error) {
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return amount.Mul(hundred).Round(0).IntPart(), nil
}

// FormatMinor renders integer minor units as a major-unit decimal string with
// exactly two fractional digits. The inverse of ParseMinor.
func FormatMinor(value int64) string {
	return decimal.New(value, -2).StringFixed(2)
}

// ValueToInt64 normalizes whatever the driver handed back for an integer column.
func ValueToInt64(value any) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case []byte:
		parsed, _ := strconv.ParseInt(string(v), 10, 64)
		return parsed
	case string:
		parsed, _ := strconv.ParseInt(v, 10, 64)
		return parsed
	default:
		parsed, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
		return parsed
	}
}
