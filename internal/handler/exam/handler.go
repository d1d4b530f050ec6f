// Package exam exposes exam upload and lifecycle endpoints.
package exam

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/internal/pager"
	examsvc "github.com/clinrec/console/internal/service/exam"
	apperrors "github.com/clinrec/console/pkg/errors"
	"github.com/clinrec/console/pkg/httputil"
)

const defaultPageSize = 10

type Handler struct {
	service examsvc.ExamService

	// Exam lists are per patient; each (patient, page size) pair gets
	// its own pager so concurrent views stay independent.
	mu     sync.Mutex
	pagers map[pagerKey]*pager.Pager[*model.Exam]
}

type pagerKey struct {
	patientID int64
	perPage   int
}

func NewHandler(service examsvc.ExamService) *Handler {
	return &Handler{
		service: service,
		pagers:  make(map[pagerKey]*pager.Pager[*model.Exam]),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients/:id/exams")
	{
		patients.GET("", h.ListExams)
		patients.POST("", h.UploadExam)
	}

	exams := r.Group("/exams")
	{
		exams.GET("/:id", h.GetExam)
		exams.POST("/:id/reprocess", h.ReprocessExam)
		exams.DELETE("/:id", h.DeleteExam)
	}
}

func (h *Handler) pagerFor(patientID int64, perPage int) *pager.Pager[*model.Exam] {
	if perPage < 1 {
		perPage = defaultPageSize
	}
	key := pagerKey{patientID: patientID, perPage: perPage}

	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pagers[key]
	if !ok {
		p = pager.New(func(ctx context.Context, _ string, page, pageSize int) ([]*model.Exam, int, error) {
			return h.service.ListByPatient(ctx, patientID, page, pageSize)
		}, perPage)
		h.pagers[key] = p
	}
	return p
}

func (h *Handler) ListExams(c *gin.Context) {
	patientID, ok := pathID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPageSize)))

	result, err := h.pagerFor(patientID, perPage).Query(c.Request.Context(), "", page)
	if err != nil {
		if errors.Is(err, pager.ErrStale) {
			c.Status(http.StatusNoContent)
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithPagination(c, result.Items,
		result.State.Page, result.State.PageSize, result.State.TotalItems)
}

// UploadExam accepts a multipart form: the file plus optional
// metadata fields. Validation happens locally before any bytes are
// forwarded to the records service.
func (h *Handler) UploadExam(c *gin.Context) {
	patientID, ok := pathID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("file is required"))
		return
	}

	var meta model.ExamMetadata
	if err := c.ShouldBind(&meta); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	defer file.Close()

	created, err := h.service.Submit(c.Request.Context(), patientID, examsvc.Upload{
		Filename:    fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Reader:      file,
	}, &meta)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetExam(c *gin.Context) {
	examID, ok := pathID(c)
	if !ok {
		return
	}

	exam, err := h.service.Refresh(c.Request.Context(), examID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, exam)
}

// ReprocessExam asks the records service to run extraction again. The
// request is forwarded regardless of the locally known status; the
// records service is authoritative and may refuse or no-op.
func (h *Handler) ReprocessExam(c *gin.Context) {
	examID, ok := pathID(c)
	if !ok {
		return
	}

	exam, err := h.service.Reprocess(c.Request.Context(), examID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, exam)
}

func (h *Handler) DeleteExam(c *gin.Context) {
	examID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), examID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": examID, "deleted": true})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httputil.RespondWithError(c, apperrors.Validation("invalid id"))
		return 0, false
	}
	return id, true
}
