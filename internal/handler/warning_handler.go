package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/internal/scheduler"
	"github.com/noah-isme/academic-progression-api/internal/service"
	"github.com/noah-isme/academic-progression-api/pkg/response"
)

type warningService interface {
	List(ctx context.Context, filter models.WarningFilter) ([]models.WarningDetail, *models.Pagination, error)
	EvaluateStudent(ctx context.Context, studentID string) (*service.EvaluationResult, error)
	IssueManual(ctx context.Context, req service.IssueWarningRequest) (*models.AcademicWarning, error)
	Resolve(ctx context.Context, id string, req service.ResolveWarningRequest) (*models.AcademicWarning, error)
	ExportActive(ctx context.Context, format string) (*service.ExportFile, error)
}

type sweepTrigger interface {
	Trigger(trigger, semesterLabel string) (bool, error)
}

// WarningHandler exposes the academic warning lifecycle.
type WarningHandler struct {
	warnings warningService
	sweeps   sweepTrigger
}

// NewWarningHandler constructs WarningHandler.
func NewWarningHandler(warnings warningService, sweeps sweepTrigger) *WarningHandler {
	return &WarningHandler{warnings: warnings, sweeps: sweeps}
}

// EvaluateAllRequest optionally names the term a sweep evaluates.
type EvaluateAllRequest struct {
	SemesterLabel string `json:"semester_label"`
}

// List godoc
// @Summary List warnings
// @Tags Warnings
// @Produce json
// @Param studentId query string false "Filter by student"
// @Param type query string false "Warning type"
// @Param status query string false "Active, Resolved or Superseded"
// @Param minLevel query int false "Minimum severity"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /warnings [get]
func (h *WarningHandler) List(c *gin.Context) {
	filter := models.WarningFilter{
		StudentID: c.Query("studentId"),
		Type:      models.WarningType(c.Query("type")),
		Status:    models.WarningStatus(c.Query("status")),
	}
	if lvl, err := strconv.Atoi(c.Query("minLevel")); err == nil {
		filter.MinLevel = lvl
	}
	filter.Page, filter.PageSize = pageParams(c)

	warnings, pagination, err := h.warnings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "warnings retrieved", warnings, pagination)
}

// Issue godoc
// @Summary Issue a probation or administrative warning
// @Tags Warnings
// @Accept json
// @Produce json
// @Param payload body service.IssueWarningRequest true "Warning payload"
// @Success 201 {object} response.Envelope
// @Router /warnings [post]
func (h *WarningHandler) Issue(c *gin.Context) {
	var req service.IssueWarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	warning, err := h.warnings.IssueManual(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "warning issued", warning)
}

// Resolve godoc
// @Summary Resolve a warning
// @Tags Warnings
// @Accept json
// @Produce json
// @Param id path string true "Warning ID"
// @Param payload body service.ResolveWarningRequest true "Resolution notes"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /warnings/{id}/resolve [post]
func (h *WarningHandler) Resolve(c *gin.Context) {
	var req service.ResolveWarningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	warning, err := h.warnings.Resolve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "warning resolved", warning)
}

// EvaluateStudent godoc
// @Summary Re-evaluate one student's warnings
// @Tags Warnings
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/warnings/evaluate [post]
func (h *WarningHandler) EvaluateStudent(c *gin.Context) {
	result, err := h.warnings.EvaluateStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "warnings evaluated", result)
}

// EvaluateAll godoc
// @Summary Queue a warning sweep over every active student
// @Tags Warnings
// @Accept json
// @Produce json
// @Param payload body EvaluateAllRequest false "Optional semester label"
// @Success 202 {object} response.Envelope
// @Router /warnings/evaluate-all [post]
func (h *WarningHandler) EvaluateAll(c *gin.Context) {
	var req EvaluateAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}
	}
	queued, err := h.sweeps.Trigger(scheduler.TriggerManual, req.SemesterLabel)
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "warning sweep queued"
	if !queued {
		message = "warning sweep already pending"
	}
	response.JSON(c, http.StatusAccepted, message, gin.H{"queued": queued}, nil)
}

// Export godoc
// @Summary Export active warnings
// @Tags Warnings
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /warnings/export [get]
func (h *WarningHandler) Export(c *gin.Context) {
	file, err := h.warnings.ExportActive(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Body)
}
