// Package report exposes the aggregated patient views: summary,
// timeline and trend series. Each request fetches the patient and the
// full exam list together, so one response always reflects a single
// snapshot of the remote data.
package report

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinrec/console/internal/model"
	reportsvc "github.com/clinrec/console/internal/service/report"
	apperrors "github.com/clinrec/console/pkg/errors"
	"github.com/clinrec/console/pkg/httputil"
)

// PatientSource fetches one patient snapshot.
type PatientSource interface {
	Get(ctx context.Context, id int64) (*model.Patient, error)
}

// ExamSource fetches a patient's complete exam history.
type ExamSource interface {
	ListAllByPatient(ctx context.Context, patientID int64) ([]*model.Exam, error)
}

type Handler struct {
	patients PatientSource
	exams    ExamSource
	reports  *reportsvc.Service
}

func NewHandler(patients PatientSource, exams ExamSource, reports *reportsvc.Service) *Handler {
	return &Handler{patients: patients, exams: exams, reports: reports}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients/:id")
	{
		patients.GET("/summary", h.GetSummary)
		patients.GET("/timeline", h.GetTimeline)
		patients.GET("/trends", h.GetTrends)
	}
}

func (h *Handler) GetSummary(c *gin.Context) {
	patient, exams, ok := h.snapshot(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, h.reports.BuildSummary(patient, exams))
}

func (h *Handler) GetTimeline(c *gin.Context) {
	patient, exams, ok := h.snapshot(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, h.reports.BuildTimeline(patient, exams))
}

func (h *Handler) GetTrends(c *gin.Context) {
	_, exams, ok := h.snapshot(c)
	if !ok {
		return
	}

	months, err := strconv.Atoi(c.DefaultQuery("months", strconv.Itoa(reportsvc.DefaultTrendWindowMonths)))
	if err != nil || months < 1 {
		httputil.RespondWithError(c, apperrors.Validation("months must be a positive integer"))
		return
	}

	httputil.RespondWithSuccess(c, h.reports.BuildTrends(exams, reportsvc.TrendQuery{
		Months:    months,
		Parameter: c.Query("parameter"),
	}))
}

// snapshot loads the patient and the full exam history for one
// aggregation pass. Responds and returns ok=false on failure.
func (h *Handler) snapshot(c *gin.Context) (*model.Patient, []*model.Exam, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httputil.RespondWithError(c, apperrors.Validation("invalid id"))
		return nil, nil, false
	}

	ctx := c.Request.Context()
	patient, err := h.patients.Get(ctx, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return nil, nil, false
	}

	exams, err := h.exams.ListAllByPatient(ctx, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return nil, nil, false
	}
	return patient, exams, true
}
