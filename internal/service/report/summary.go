package report

import (
	"math"
	"sort"

	"github.com/clinrec/console/internal/model"
)

// maxRecentAlteredValues caps the altered-values list on the summary.
const maxRecentAlteredValues = 5

// BuildSummary condenses a patient's exam history into the at-a-glance
// report: per-status statistics, alert flags, the latest exam and the
// most recent out-of-range readings.
func (s *Service) BuildSummary(patient *model.Patient, exams []*model.Exam) *model.PatientSummary {
	stats := model.ExamStatistics{Total: len(exams)}
	var lastExam *model.Exam
	var altered []model.AlteredValue

	for _, exam := range exams {
		switch exam.ProcessingStatus {
		case model.StatusCompleted:
			stats.Completed++
		case model.StatusPending:
			stats.Pending++
		case model.StatusProcessing:
			stats.Processing++
		case model.StatusError:
			stats.Error++
		}

		if lastExam == nil || exam.CreatedAt.After(lastExam.CreatedAt) {
			lastExam = exam
		}

		if exam.ProcessingStatus != model.StatusCompleted {
			continue
		}
		for _, value := range exam.ExtractedValues {
			alteration, flagged := value.OutOfRange()
			if !flagged {
				continue
			}
			altered = append(altered, model.AlteredValue{
				Parameter:      value.Name,
				Value:          value.Value,
				Unit:           value.Unit,
				Reference:      value.ReferenceRange,
				AlterationType: alteration,
				ExamType:       exam.ExamType,
				ExamDate:       exam.EffectiveDate(),
			})
		}
	}

	if stats.Total > 0 {
		rate := float64(stats.Completed) / float64(stats.Total) * 100
		stats.CompletionRate = math.Round(rate*10) / 10
	}

	sort.SliceStable(altered, func(i, j int) bool {
		return altered[i].ExamDate.After(altered[j].ExamDate)
	})
	if len(altered) > maxRecentAlteredValues {
		altered = altered[:maxRecentAlteredValues]
	}
	if altered == nil {
		altered = []model.AlteredValue{}
	}

	return &model.PatientSummary{
		ExamsStatistics: stats,
		Alerts: model.SummaryAlerts{
			PendingExams:  stats.Pending > 0 || stats.Processing > 0,
			ErrorExams:    stats.Error > 0,
			AlteredValues: len(altered) > 0,
		},
		LastExam:            lastExam,
		RecentAlteredValues: altered,
	}
}
