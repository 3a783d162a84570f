package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/internal/service"
	"github.com/noah-isme/academic-progression-api/pkg/response"
)

type periodService interface {
	List(ctx context.Context) ([]models.EnrollmentPeriod, error)
	Create(ctx context.Context, req service.CreatePeriodRequest) (*models.EnrollmentPeriod, error)
	Current(ctx context.Context) (models.EnrollmentPeriod, bool, error)
}

// PeriodHandler exposes enrollment period endpoints.
type PeriodHandler struct {
	periods periodService
}

// NewPeriodHandler constructs PeriodHandler.
func NewPeriodHandler(periods periodService) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

// CurrentPeriodResponse reports whether enrollment is open right now.
type CurrentPeriodResponse struct {
	Open   bool                     `json:"open"`
	Period *models.EnrollmentPeriod `json:"period,omitempty"`
}

// List godoc
// @Summary List enrollment periods
// @Tags Enrollment Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollment-periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	periods, err := h.periods.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "enrollment periods retrieved", periods)
}

// Create godoc
// @Summary Open an enrollment period
// @Tags Enrollment Periods
// @Accept json
// @Produce json
// @Param payload body service.CreatePeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollment-periods [post]
func (h *PeriodHandler) Create(c *gin.Context) {
	var req service.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	period, err := h.periods.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "enrollment period created", period)
}

// Current godoc
// @Summary Get the enrollment period open now
// @Tags Enrollment Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enrollment-periods/current [get]
func (h *PeriodHandler) Current(c *gin.Context) {
	period, ok, err := h.periods.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if !ok {
		response.OK(c, "enrollment is closed", CurrentPeriodResponse{Open: false})
		return
	}
	response.OK(c, "enrollment is open", CurrentPeriodResponse{Open: true, Period: &period})
}
