package model

import "time"

// TimelineEventType identifies the source of a timeline entry. The set
// is extensible; consumers must tolerate unknown types.
type TimelineEventType string

const (
	EventPatientCreated TimelineEventType = "patient_created"
	EventExamUploaded   TimelineEventType = "exam_uploaded"
	EventValueAlert     TimelineEventType = "value_alert"
)

// TimelineEvent is a read-only projection merged from patient and exam
// history. It is never persisted; every load regenerates the feed.
type TimelineEvent struct {
	ID          string            `json:"id"`
	Type        TimelineEventType `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Date        time.Time         `json:"date"`
	// Color is a presentation grouping tag only.
	Color string `json:"color"`
}

// TrendPoint is one dated reading inside a parameter series.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Unit  string    `json:"unit,omitempty"`
}

// TrendReport reshapes a patient's completed exams into one ordered
// series per clinical parameter, scoped to a trailing window.
// AvailableParameters always reflects the full unfiltered set, so a
// caller can populate a parameter selector while viewing one series.
type TrendReport struct {
	AvailableParameters []string                `json:"available_parameters"`
	Series              map[string][]TrendPoint `json:"series"`
	SelectedParameter   string                  `json:"selected_parameter,omitempty"`
	WindowMonths        int                     `json:"window_months"`
}

// ExamStatistics summarises a patient's exams by processing status.
type ExamStatistics struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Processing     int     `json:"processing"`
	Error          int     `json:"error"`
	CompletionRate float64 `json:"completion_rate"`
}

// SummaryAlerts flags conditions the console surfaces prominently.
type SummaryAlerts struct {
	PendingExams  bool `json:"pending_exams"`
	ErrorExams    bool `json:"error_exams"`
	AlteredValues bool `json:"altered_values"`
}

// AlteredValue is one out-of-range reading listed in the summary.
type AlteredValue struct {
	Parameter      string     `json:"parameter"`
	Value          string     `json:"value"`
	Unit           string     `json:"unit,omitempty"`
	Reference      string     `json:"reference"`
	AlterationType Alteration `json:"alteration_type"`
	ExamType       string     `json:"exam_type,omitempty"`
	ExamDate       time.Time  `json:"exam_date"`
}

// PatientSummary is the at-a-glance report for one patient.
type PatientSummary struct {
	ExamsStatistics     ExamStatistics `json:"exams_statistics"`
	Alerts              SummaryAlerts  `json:"alerts"`
	LastExam            *Exam          `json:"last_exam,omitempty"`
	RecentAlteredValues []AlteredValue `json:"recent_altered_values"`
}
