package report

import (
	"fmt"
	"sort"

	"github.com/clinrec/console/internal/model"
)

// typeRank fixes the tie-break order for events sharing an instant, so
// equal-dated events always render in the same order.
var typeRank = map[model.TimelineEventType]int{
	model.EventPatientCreated: 0,
	model.EventExamUploaded:   1,
	model.EventValueAlert:     2,
}

// BuildTimeline merges the patient's registration, exam uploads and
// out-of-range value alerts into one feed, most recent first. The
// result is recomputed fresh on every call and is deterministic for
// identical inputs.
func (s *Service) BuildTimeline(patient *model.Patient, exams []*model.Exam) []model.TimelineEvent {
	events := make([]model.TimelineEvent, 0, len(exams)+1)

	events = append(events, model.TimelineEvent{
		ID:          fmt.Sprintf("patient-%d", patient.ID),
		Type:        model.EventPatientCreated,
		Title:       "Paciente cadastrado",
		Description: fmt.Sprintf("%s entrou no sistema", patient.FullName),
		Date:        patient.CreatedAt,
		Color:       "blue",
	})

	for _, exam := range exams {
		events = append(events, model.TimelineEvent{
			ID:          fmt.Sprintf("exam-%d", exam.ID),
			Type:        model.EventExamUploaded,
			Title:       "Exame enviado",
			Description: uploadDescription(exam),
			Date:        exam.CreatedAt,
			Color:       uploadColor(exam.ProcessingStatus),
		})

		if exam.ProcessingStatus != model.StatusCompleted {
			continue
		}
		for i, value := range exam.ExtractedValues {
			alteration, flagged := value.OutOfRange()
			if !flagged {
				continue
			}
			events = append(events, model.TimelineEvent{
				ID:          fmt.Sprintf("alert-%d-%d", exam.ID, i),
				Type:        model.EventValueAlert,
				Title:       fmt.Sprintf("Valor alterado: %s", value.Name),
				Description: alertDescription(value, alteration),
				Date:        exam.EffectiveDate(),
				Color:       "red",
			})
		}
	}

	// Descending by date; ties keep a deterministic type order, then
	// source order (the sort is stable).
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.After(events[j].Date)
		}
		return typeRank[events[i].Type] < typeRank[events[j].Type]
	})

	return events
}

func uploadDescription(exam *model.Exam) string {
	if exam.ExamType != "" {
		return fmt.Sprintf("%s (%s)", exam.OriginalFilename, exam.ExamType)
	}
	return exam.OriginalFilename
}

func uploadColor(status model.ProcessingStatus) string {
	switch status {
	case model.StatusCompleted:
		return "green"
	case model.StatusError:
		return "red"
	default:
		return "yellow"
	}
}

func alertDescription(value model.ExtractedValue, alteration model.Alteration) string {
	direction := "fora da referência"
	switch alteration {
	case model.AlterationAbove:
		direction = "acima da referência"
	case model.AlterationBelow:
		direction = "abaixo da referência"
	}
	if value.ReferenceRange != "" {
		return fmt.Sprintf("%s %s %s (referência: %s)", value.Value, value.Unit, direction, value.ReferenceRange)
	}
	return fmt.Sprintf("%s %s %s", value.Value, value.Unit, direction)
}
