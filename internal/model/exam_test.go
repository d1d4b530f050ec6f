package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDowngradesInconsistentCompleted(t *testing.T) {
	exam := &Exam{
		ProcessingStatus: StatusCompleted,
		ProcessingError:  "extraction crashed",
		ExtractedText:    "partial text",
		AISummary:        "partial summary",
		ExtractedValues:  []ExtractedValue{{Name: "Glucose", Value: "90"}},
	}

	exam.Normalize()

	assert.Equal(t, StatusError, exam.ProcessingStatus)
	assert.Equal(t, "extraction crashed", exam.ProcessingError)
	assert.Empty(t, exam.ExtractedText)
	assert.Empty(t, exam.AISummary)
	assert.Nil(t, exam.ExtractedValues)
}

func TestNormalizeBackfillsErrorMessage(t *testing.T) {
	exam := &Exam{ProcessingStatus: StatusError}
	exam.Normalize()

	assert.Equal(t, StatusError, exam.ProcessingStatus)
	assert.NotEmpty(t, exam.ProcessingError)
}

func TestNormalizeClearsStaleErrorMessage(t *testing.T) {
	exam := &Exam{ProcessingStatus: StatusPending, ProcessingError: "old failure"}
	exam.Normalize()

	assert.Empty(t, exam.ProcessingError)
}

func TestNormalizeInvariantHolds(t *testing.T) {
	cases := []struct {
		name string
		exam Exam
	}{
		{"pending", Exam{ProcessingStatus: StatusPending}},
		{"processing", Exam{ProcessingStatus: StatusProcessing}},
		{"completed clean", Exam{ProcessingStatus: StatusCompleted}},
		{"completed with error", Exam{ProcessingStatus: StatusCompleted, ProcessingError: "x"}},
		{"error with message", Exam{ProcessingStatus: StatusError, ProcessingError: "x"}},
		{"error without message", Exam{ProcessingStatus: StatusError}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exam := tc.exam
			exam.Normalize()
			hasError := exam.ProcessingError != ""
			assert.Equal(t, exam.ProcessingStatus == StatusError, hasError,
				"status=error must hold exactly when processing_error is set")
		})
	}
}

func TestEffectiveDatePrefersExamDate(t *testing.T) {
	uploaded := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	exam := &Exam{ExamDate: "2025-05-20", CreatedAt: uploaded}

	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), exam.EffectiveDate())

	exam.ExamDate = ""
	assert.Equal(t, uploaded, exam.EffectiveDate())

	exam.ExamDate = "not-a-date"
	assert.Equal(t, uploaded, exam.EffectiveDate())
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "2.00 KB", FormatFileSize(2048))
	assert.Equal(t, "1.50 MB", FormatFileSize(3<<20/2))
}
