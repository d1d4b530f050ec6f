package model

import (
	"regexp"
	"strconv"
	"strings"
)

// Alteration classifies how a measured value sits against its
// reference range.
type Alteration string

const (
	AlterationAbove   Alteration = "above"
	AlterationBelow   Alteration = "below"
	AlterationAltered Alteration = "altered"
)

// ExtractedValue is one structured reading pulled out of an exam by the
// extraction service. Value and ReferenceRange are free text as
// reported by the lab, so numeric interpretation is best effort.
type ExtractedValue struct {
	Name           string `json:"name"`
	Value          string `json:"value"`
	Unit           string `json:"unit,omitempty"`
	ReferenceRange string `json:"reference_range,omitempty"`
}

var numberPattern = regexp.MustCompile(`[-+]?\d+(?:[.,]\d+)?`)

// parseNumber extracts the first decimal number from lab free text,
// accepting comma as the decimal separator.
func parseNumber(s string) (float64, bool) {
	match := numberPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	match = strings.ReplaceAll(match, ",", ".")
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Numeric returns the quantitative reading of the value, if it has one.
// Textual findings ("negativo", "não reagente") yield false.
func (v ExtractedValue) Numeric() (float64, bool) {
	return parseNumber(v.Value)
}

// referenceBounds parses a reference range into optional lower/upper
// bounds. Supported shapes: "70 - 99", "70–99", "< 200", "<= 200",
// "> 40", ">= 40", "até 150".
func referenceBounds(ref string) (lower, upper *float64, ok bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil, false
	}

	switch {
	case strings.HasPrefix(ref, "<"):
		if v, found := parseNumber(ref); found {
			return nil, &v, true
		}
	case strings.HasPrefix(ref, ">"):
		if v, found := parseNumber(ref); found {
			return &v, nil, true
		}
	case strings.HasPrefix(strings.ToLower(ref), "até"):
		if v, found := parseNumber(ref); found {
			return nil, &v, true
		}
	default:
		nums := numberPattern.FindAllString(ref, 2)
		if len(nums) == 2 {
			lo, okLo := parseNumber(nums[0])
			hi, okHi := parseNumber(nums[1])
			if okLo && okHi && lo <= hi {
				return &lo, &hi, true
			}
		}
	}
	return nil, nil, false
}

// OutOfRange reports whether the reading falls outside its reference
// range, and in which direction. Qualitative results (both value and
// reference textual, e.g. "reagente" against "não reagente") are
// flagged as altered without a direction. Values with neither a
// numeric reading nor a comparable textual reference are never
// flagged.
func (v ExtractedValue) OutOfRange() (Alteration, bool) {
	reading, ok := v.Numeric()
	if !ok {
		if qualitativeMismatch(v.Value, v.ReferenceRange) {
			return AlterationAltered, true
		}
		return "", false
	}
	lower, upper, ok := referenceBounds(v.ReferenceRange)
	if !ok {
		return "", false
	}
	if upper != nil && reading > *upper {
		return AlterationAbove, true
	}
	if lower != nil && reading < *lower {
		return AlterationBelow, true
	}
	return "", false
}

// qualitativeMismatch compares a textual result against a textual
// expected reference ("negativo", "não reagente"). Only applies when
// the reference itself carries no numbers.
func qualitativeMismatch(value, ref string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	ref = strings.ToLower(strings.TrimSpace(ref))
	if value == "" || ref == "" {
		return false
	}
	if numberPattern.MatchString(ref) {
		return false
	}
	return value != ref
}
