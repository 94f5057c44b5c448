// Package currency renders integer cent amounts for display.
package currency

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var displayTag = language.AmericanEnglish

// Format renders cents as US dollars with grouping and exactly two fraction
// digits, e.g. 854500 -> "$8,545.00".
func Format(cents int64) string {
	sign := ""
	mag := uint64(cents)
	if cents < 0 {
		sign = "-"
		mag = -mag
	}
	p := message.NewPrinter(displayTag)
	return sign + "$" + p.Sprintf("%d", mag/100) + fmt.Sprintf(".%02d", mag%100)
}
