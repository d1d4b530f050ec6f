// Package patient exposes the patient registry endpoints.
package patient

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/internal/pager"
	"github.com/clinrec/console/internal/service/patient"
	apperrors "github.com/clinrec/console/pkg/errors"
	"github.com/clinrec/console/pkg/httputil"
)

const defaultPageSize = 10

type Handler struct {
	service patient.PatientService

	// One pager per page size; each keeps its own search/page state
	// and guards against out-of-order completion.
	mu     sync.Mutex
	pagers map[int]*pager.Pager[*model.Patient]
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{
		service: service,
		pagers:  make(map[int]*pager.Pager[*model.Patient]),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.POST("", h.CreatePatient)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeactivatePatient)
		patients.POST("/:id/deactivate", h.DeactivatePatient)
		patients.POST("/:id/activate", h.ActivatePatient)
	}
}

func (h *Handler) pagerFor(perPage int) *pager.Pager[*model.Patient] {
	if perPage < 1 {
		perPage = defaultPageSize
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pagers[perPage]
	if !ok {
		p = pager.New(func(ctx context.Context, search string, page, pageSize int) ([]*model.Patient, int, error) {
			return h.service.List(ctx, search, page, pageSize)
		}, perPage)
		h.pagers[perPage] = p
	}
	return p
}

func (h *Handler) ListPatients(c *gin.Context) {
	search := c.Query("search")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPageSize)))

	result, err := h.pagerFor(perPage).Query(c.Request.Context(), search, page)
	if err != nil {
		if errors.Is(err, pager.ErrStale) {
			// A newer query for the same list already answered; this
			// response must not overwrite it on the client.
			c.Status(http.StatusNoContent)
			return
		}
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithPagination(c, result.Items,
		result.State.Page, result.State.PageSize, result.State.TotalItems)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	created, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	found, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

// DeactivatePatient soft-deletes: the record stays queryable and can be
// reactivated later.
func (h *Handler) DeactivatePatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": id, "active": false})
}

func (h *Handler) ActivatePatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Activate(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": id, "active": true})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httputil.RespondWithError(c, apperrors.Validation("invalid id"))
		return 0, false
	}
	return id, true
}
