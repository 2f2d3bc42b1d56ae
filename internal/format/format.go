// Package format renders byte counts and peso amounts for display.
package format

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

var clp = currency.MustParseISO("CLP")

// Bytes renders n with a base-1024 unit and at most two decimals.
func Bytes(n int64) string {
	if n <= 0 {
		return "0 B"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(byteUnits) {
		i = len(byteUnits) - 1
	}
	v := float64(n) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + byteUnits[i]
}

// CLP renders a Chilean peso amount the way es-CL does: "$5.000".
func CLP(amount int64) string {
	scale, _ := currency.Standard.Rounding(clp)

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	out := sign + "$" + group(digits, ".")
	if scale > 0 {
		out += "," + strings.Repeat("0", scale)
	}
	return out
}

func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
