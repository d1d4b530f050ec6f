// Package report contains the clinical-data aggregation core: the
// timeline merge, the trend series reshaping and the patient summary.
// Everything here is a pure transform over snapshots fetched together
// at the start of one aggregation pass; no state is kept between
// calls and inputs are never mutated.
package report

import "time"

type Service struct {
	now func() time.Time
}

func NewService() *Service {
	return &Service{now: time.Now}
}

// NewServiceAt pins the aggregation clock; used by tests and by any
// caller that needs a reproducible window.
func NewServiceAt(now func() time.Time) *Service {
	return &Service{now: now}
}
