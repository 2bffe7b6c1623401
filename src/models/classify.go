package models

import (
	"strings"
	"unicode"
)

// ClassifyType maps a broker's free-form transaction description onto a
// canonical type. Matching is case-insensitive and substring based:
// "buy"/"purchase" and "sell"/"sale" cover the trade spellings seen across
// broker exports, and anything containing "div" is a dividend. Unrecognised
// descriptions are passed through with the first letter capitalized rather
// than dropped, so non-trade rows survive import for downstream review.
func ClassifyType(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(lower, "buy"), strings.Contains(lower, "purchase"):
		return TypeBuy
	case strings.Contains(lower, "sell"), strings.Contains(lower, "sale"):
		return TypeSell
	case strings.Contains(lower, "div"):
		return TypeDividend
	}
	return capitalize(strings.TrimSpace(raw))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
