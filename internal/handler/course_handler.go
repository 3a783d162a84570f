package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-progression-api/internal/models"
	"github.com/noah-isme/academic-progression-api/internal/service"
	"github.com/noah-isme/academic-progression-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error)
	Get(ctx context.Context, id string) (*service.CourseDetail, error)
	Create(ctx context.Context, req service.CreateCourseRequest) (*models.Course, error)
	AddPrerequisite(ctx context.Context, courseID string, req service.AddPrerequisiteRequest) (*service.CourseDetail, error)
	AssignDivision(ctx context.Context, courseID string, req service.AssignDivisionRequest) (*models.CourseDivision, error)
}

// CourseHandler exposes the course catalog.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param search query string false "Search by name or code"
// @Param departmentId query string false "Filter by department"
// @Param status query string false "Available or Unavailable"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := models.CourseFilter{
		Search:       strings.TrimSpace(c.Query("search")),
		DepartmentID: c.Query("departmentId"),
		Status:       models.CourseStatus(c.Query("status")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	courses, pagination, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, "courses retrieved", courses, pagination)
}

// Get godoc
// @Summary Get course with prerequisites
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "course retrieved", course)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "course created", course)
}

// AddPrerequisite godoc
// @Summary Add a prerequisite to a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.AddPrerequisiteRequest true "Prerequisite payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/prerequisites [post]
func (h *CourseHandler) AddPrerequisite(c *gin.Context) {
	var req service.AddPrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	course, err := h.courses.AddPrerequisite(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "prerequisite added", course)
}

// AssignDivision godoc
// @Summary Offer a course to a division
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body service.AssignDivisionRequest true "Division payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/divisions [post]
func (h *CourseHandler) AssignDivision(c *gin.Context) {
	var req service.AssignDivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	offering, err := h.courses.AssignDivision(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "course offered to division", offering)
}
