package report

import (
	"sort"

	"github.com/clinrec/console/internal/model"
)

// TrendQuery scopes a trend build. Months is the trailing window;
// Parameter optionally restricts the output to one series.
type TrendQuery struct {
	Months    int
	Parameter string
}

// DefaultTrendWindowMonths is used when the caller does not pick a
// window.
const DefaultTrendWindowMonths = 12

// BuildTrends reshapes the patient's completed exams into one
// date-ascending series per clinical parameter, restricted to the
// trailing window. AvailableParameters always lists the full
// unfiltered set so a parameter selector can be populated while one
// filtered series is displayed.
func (s *Service) BuildTrends(exams []*model.Exam, query TrendQuery) *model.TrendReport {
	months := query.Months
	if months <= 0 {
		months = DefaultTrendWindowMonths
	}

	now := s.now()
	windowStart := now.AddDate(0, -months, 0)

	// Flatten in-window completed exams to (parameter, date, value)
	// triples, walking exams in input order so equal-dated points keep
	// their relative order through the stable sort below.
	series := make(map[string][]model.TrendPoint)
	for _, exam := range exams {
		if exam.ProcessingStatus != model.StatusCompleted {
			continue
		}
		date := exam.EffectiveDate()
		if date.Before(windowStart) || date.After(now) {
			continue
		}
		for _, value := range exam.ExtractedValues {
			reading, numeric := value.Numeric()
			if !numeric {
				// Textual findings carry no trend point, and a name
				// with no numeric reading anywhere stays out of the
				// available set.
				continue
			}
			series[value.Name] = append(series[value.Name], model.TrendPoint{
				Date:  date,
				Value: reading,
				Unit:  value.Unit,
			})
		}
	}

	available := make([]string, 0, len(series))
	for name := range series {
		available = append(available, name)
	}
	sort.Strings(available)

	for name := range series {
		points := series[name]
		sort.SliceStable(points, func(i, j int) bool {
			return points[i].Date.Before(points[j].Date)
		})
		series[name] = points
	}

	report := &model.TrendReport{
		AvailableParameters: available,
		Series:              series,
		WindowMonths:        months,
	}

	if query.Parameter != "" {
		report.SelectedParameter = query.Parameter
		filtered := make(map[string][]model.TrendPoint, 1)
		if points, known := series[query.Parameter]; known {
			// A known parameter keeps an explicit entry even with
			// zero points, so "no data in window" stays
			// distinguishable from "unknown parameter".
			if points == nil {
				points = []model.TrendPoint{}
			}
			filtered[query.Parameter] = points
		}
		report.Series = filtered
	}

	return report
}
