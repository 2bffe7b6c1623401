package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDecimal parses a broker numeric field. Thousands-separator commas and
// a leading currency sign are stripped first. Empty input returns nil rather
// than zero, so "no fee charged" stays distinguishable from "fee field
// missing".
func ParseDecimal(raw string) (*float64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, nil
	}
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "$")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("non-finite number %q", raw)
	}
	return &v, nil
}

// ParseDecimalRequired is ParseDecimal for fields that must carry a value.
func ParseDecimalRequired(raw, field string) (float64, error) {
	v, err := ParseDecimal(raw)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("missing required field %q", field)
	}
	return *v, nil
}

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
