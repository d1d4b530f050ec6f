package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumericParsesLabFormats(t *testing.T) {
	cases := []struct {
		value string
		want  float64
		ok    bool
	}{
		{"98", 98, true},
		{"98 mg/dL", 98, true},
		{"5,4", 5.4, true},
		{"12.8 g/dL", 12.8, true},
		{"negativo", 0, false},
		{"não reagente", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := ExtractedValue{Value: tc.value}.Numeric()
		assert.Equal(t, tc.ok, ok, "value %q", tc.value)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "value %q", tc.value)
		}
	}
}

func TestOutOfRange(t *testing.T) {
	cases := []struct {
		name    string
		value   ExtractedValue
		want    Alteration
		alerted bool
	}{
		{
			name:    "within interval range",
			value:   ExtractedValue{Name: "Glucose", Value: "85", ReferenceRange: "70 - 99"},
			alerted: false,
		},
		{
			name:    "above interval range",
			value:   ExtractedValue{Name: "Glucose", Value: "126", ReferenceRange: "70 - 99"},
			want:    AlterationAbove,
			alerted: true,
		},
		{
			name:    "below interval range",
			value:   ExtractedValue{Name: "Hemoglobin", Value: "10,2", ReferenceRange: "12.0 - 15.5"},
			want:    AlterationBelow,
			alerted: true,
		},
		{
			name:    "upper bound only",
			value:   ExtractedValue{Name: "LDL", Value: "240", ReferenceRange: "< 200"},
			want:    AlterationAbove,
			alerted: true,
		},
		{
			name:    "lower bound only",
			value:   ExtractedValue{Name: "HDL", Value: "32", ReferenceRange: "> 40"},
			want:    AlterationBelow,
			alerted: true,
		},
		{
			name:    "ate upper bound",
			value:   ExtractedValue{Name: "Triglycerides", Value: "180", ReferenceRange: "até 150"},
			want:    AlterationAbove,
			alerted: true,
		},
		{
			name:    "matching qualitative result",
			value:   ExtractedValue{Name: "HIV", Value: "não reagente", ReferenceRange: "não reagente"},
			alerted: false,
		},
		{
			name:    "mismatching qualitative result",
			value:   ExtractedValue{Name: "HIV", Value: "reagente", ReferenceRange: "não reagente"},
			want:    AlterationAltered,
			alerted: true,
		},
		{
			name:    "textual value against numeric range",
			value:   ExtractedValue{Name: "Glucose", Value: "hemolisado", ReferenceRange: "70 - 99"},
			alerted: false,
		},
		{
			name:    "missing reference range",
			value:   ExtractedValue{Name: "Glucose", Value: "300"},
			alerted: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alt, ok := tc.value.OutOfRange()
			assert.Equal(t, tc.alerted, ok)
			if tc.alerted {
				assert.Equal(t, tc.want, alt)
			}
		})
	}
}
