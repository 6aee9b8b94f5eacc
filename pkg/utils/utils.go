package utils

import (
	"strings"

	"sendview/pkg/conversion"

	"github.com/shopspring/decimal"
)

func TruncateString(str string, num int) string {
	if len(str) <= num {
		return str
	}
	if num <= 3 {
		return str[:num]
	}
	return str[0:num-3] + "..."
}

// ShortAddress keeps the first and last four hex digits of an address.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func AddCommas(s string) string {
	if len(s) == 0 {
		return s
	}
	parts := strings.Split(s, ".")
	integerPart := parts[0]
	sign := ""
	if strings.HasPrefix(integerPart, "-") {
		sign = "-"
		integerPart = integerPart[1:]
	}

	n := len(integerPart)
	if n <= 3 {
		return s
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := n % 3
	if remainder > 0 {
		result.WriteString(integerPart[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < n; i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(integerPart[i : i+3])
	}

	if len(parts) > 1 {
		result.WriteString(".")
		result.WriteString(parts[1])
	}
	return result.String()
}

func FormatDecimal(d decimal.Decimal, places int) string {
	return AddCommas(d.StringFixed(int32(places)))
}

// FormatHexUnits renders a hex base-unit amount scaled by decimals.
// Malformed input renders as "?".
func FormatHexUnits(hexAmount string, decimals, places int) string {
	if hexAmount == "" {
		return FormatDecimal(decimal.Zero, places)
	}
	v, err := conversion.ParseHex(hexAmount)
	if err != nil {
		return "?"
	}
	return FormatDecimal(decimal.NewFromBigInt(v, int32(-decimals)), places)
}

// DecimalToFloat64 is for charting only.
func DecimalToFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
