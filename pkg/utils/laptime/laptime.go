// Package laptime formats lap and sector times with millisecond precision
package laptime

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1000)
	sixty    = decimal.NewFromInt(60)
)

// Seconds returns d in seconds truncated to milliseconds
func Seconds(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(d.Milliseconds()).Div(thousand)
}

// Format renders d as m:ss.mmm
func Format(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	secs := Seconds(d)
	minutes := secs.Div(sixty).Floor()
	rest := secs.Sub(minutes.Mul(sixty)).StringFixed(3)
	if len(rest) < 6 {
		rest = strings.Repeat("0", 6-len(rest)) + rest
	}
	return fmt.Sprintf("%s%s:%s", sign, minutes.String(), rest)
}

// Delta renders the signed difference d-ref in seconds, example: "+0.125"
func Delta(d, ref time.Duration) string {
	diff := Seconds(d).Sub(Seconds(ref))
	if diff.IsNegative() {
		return diff.StringFixed(3)
	}
	return "+" + diff.StringFixed(3)
}
