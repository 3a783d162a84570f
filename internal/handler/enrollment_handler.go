package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/internal/service"
	"github.com/noah-isme/academic-progression-api/pkg/response"
)

type enrollmentService interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error)
	Enroll(ctx context.Context, req service.EnrollRequest) (*models.Enrollment, error)
	Cancel(ctx context.Context, id string) (*models.Enrollment, error)
	HardDelete(ctx context.Context, id string) error
}

// EnrollmentHandler exposes admission control endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param courseId query string false "Filter by course"
// @Param semester query string false "Filter by semester label"
// @Param status query string false "InProgress, Completed, Failed or Cancelled"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	filter := models.EnrollmentFilter{
		StudentID:     c.Query("studentId"),
		CourseID:      c.Query("courseId"),
		SemesterLabel: c.Query("semester"),
		Status:        models.EnrollmentStatus(c.Query("status")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "enrollments retrieved", enrollments, pagination)
}

// Enroll godoc
// @Summary Enroll a student in a course
// @Description Applies the admission gates in order and reports the first failure.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "enrollment accepted", enrollment)
}

// Cancel godoc
// @Summary Cancel an in-progress enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments/{id}/cancel [post]
func (h *EnrollmentHandler) Cancel(c *gin.Context) {
	enrollment, err := h.enrollments.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "enrollment cancelled", enrollment)
}

// Delete godoc
// @Summary Remove an enrollment record
// @Tags Enrollments
// @Param id path string true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.enrollments.HardDelete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
