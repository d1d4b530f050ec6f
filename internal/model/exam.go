package model

import (
	"fmt"
	"time"
)

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusError      ProcessingStatus = "error"
)

// Terminal reports whether the extraction pipeline is done with the
// exam. An error exam can still re-enter the pipeline via reprocess.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

func (s ProcessingStatus) Display() string {
	switch s {
	case StatusPending:
		return "Pendente"
	case StatusProcessing:
		return "Processando"
	case StatusCompleted:
		return "Processado"
	case StatusError:
		return "Erro"
	default:
		return string(s)
	}
}

type FileType string

const (
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
)

// Exam is an uploaded lab document attached to exactly one patient.
// extracted_text, ai_summary and extracted_values are only present once
// extraction completed; processing_error only when it failed.
type Exam struct {
	ID                int64            `json:"id"`
	PatientID         int64            `json:"patient_id"`
	OriginalFilename  string           `json:"original_filename"`
	FileType          FileType         `json:"file_type"`
	FileSize          int64            `json:"file_size"`
	FileSizeFormatted string           `json:"file_size_formatted,omitempty"`
	ExamType          string           `json:"exam_type,omitempty"`
	ExamDate          string           `json:"exam_date,omitempty"`
	LabName           string           `json:"lab_name,omitempty"`
	DoctorName        string           `json:"doctor_name,omitempty"`
	ProcessingStatus  ProcessingStatus `json:"processing_status"`
	StatusDisplay     string           `json:"status_display,omitempty"`
	ProcessingError   string           `json:"processing_error,omitempty"`
	ExtractedText     string           `json:"extracted_text,omitempty"`
	AISummary         string           `json:"ai_summary,omitempty"`
	ExtractedValues   []ExtractedValue `json:"extracted_values,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// EffectiveDate is the clinically relevant date of an exam: the
// declared exam date when present, otherwise the upload date.
func (e *Exam) EffectiveDate() time.Time {
	if e.ExamDate != "" {
		if d, err := time.Parse("2006-01-02", e.ExamDate); err == nil {
			return d
		}
	}
	return e.CreatedAt
}

// Normalize repairs inconsistent payloads from the records service so
// that status=error holds exactly when processing_error is set. A
// completed exam carrying an error message is downgraded to error for
// display purposes; the results of a failed extraction are not shown.
func (e *Exam) Normalize() {
	if e.ProcessingStatus == StatusCompleted && e.ProcessingError != "" {
		e.ProcessingStatus = StatusError
		e.ExtractedText = ""
		e.AISummary = ""
		e.ExtractedValues = nil
	}
	if e.ProcessingStatus == StatusError && e.ProcessingError == "" {
		e.ProcessingError = "processing failed"
	}
	if e.ProcessingStatus != StatusError {
		e.ProcessingError = ""
	}
	if e.StatusDisplay == "" {
		e.StatusDisplay = e.ProcessingStatus.Display()
	}
	if e.FileSizeFormatted == "" {
		e.FileSizeFormatted = FormatFileSize(e.FileSize)
	}
}

// FormatFileSize renders a byte count for display (two decimals,
// binary megabytes).
func FormatFileSize(size int64) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
	)
	switch {
	case size >= mib:
		return fmt.Sprintf("%.2f MB", float64(size)/mib)
	case size >= kib:
		return fmt.Sprintf("%.2f KB", float64(size)/kib)
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// ExamMetadata carries the optional clinical fields attached to an
// upload. Empty fields are simply not sent.
type ExamMetadata struct {
	ExamType   string `form:"exam_type" json:"exam_type,omitempty"`
	ExamDate   string `form:"exam_date" json:"exam_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	LabName    string `form:"lab_name" json:"lab_name,omitempty"`
	DoctorName string `form:"doctor_name" json:"doctor_name,omitempty"`
}
