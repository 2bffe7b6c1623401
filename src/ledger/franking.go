package ledger

import (
	"regexp"
	"strconv"
	"strings"
)

// Dividend notes encode the franking credit as free text, e.g.
// "Franking credit $12.86" or "fully franked, credit 12.86". The convention
// is to read the first number found in the notes. This is a
// legacy-compatibility shim for existing data; new records should use a
// structured field instead of notes parsing.
var frankingNumberRe = regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d+)?`)

// ExtractFrankingCredit pulls the franking credit amount out of a dividend's
// notes field. Returns 0 when the notes carry no number.
func ExtractFrankingCredit(notes string) float64 {
	match := frankingNumberRe.FindString(notes)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
