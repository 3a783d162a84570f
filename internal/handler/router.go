package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Students    *StudentHandler
	Courses     *CourseHandler
	Enrollments *EnrollmentHandler
	Periods     *PeriodHandler
	Warnings    *WarningHandler
	Academic    *AcademicHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts the API under prefix and the probes at the root.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, exposeMetrics bool) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if exposeMetrics {
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	api.GET("/system/metrics", h.Metrics.Status)

	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id/gpa", h.Students.UpdateGPA)
	students.GET("/:id/academic-summary", h.Academic.Summary)
	students.GET("/:id/recommendations", h.Academic.Recommendations)
	students.POST("/:id/warnings/evaluate", h.Warnings.EvaluateStudent)

	courses := api.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.POST("", h.Courses.Create)
	courses.GET("/:id", h.Courses.Get)
	courses.POST("/:id/prerequisites", h.Courses.AddPrerequisite)
	courses.POST("/:id/divisions", h.Courses.AssignDivision)

	enrollments := api.Group("/enrollments")
	enrollments.GET("", h.Enrollments.List)
	enrollments.POST("", h.Enrollments.Enroll)
	enrollments.POST("/:id/cancel", h.Enrollments.Cancel)
	enrollments.DELETE("/:id", h.Enrollments.Delete)

	periods := api.Group("/enrollment-periods")
	periods.GET("", h.Periods.List)
	periods.POST("", h.Periods.Create)
	periods.GET("/current", h.Periods.Current)

	warnings := api.Group("/warnings")
	warnings.GET("", h.Warnings.List)
	warnings.POST("", h.Warnings.Issue)
	warnings.GET("/export", h.Warnings.Export)
	warnings.POST("/evaluate-all", h.Warnings.EvaluateAll)
	warnings.POST("/:id/resolve", h.Warnings.Resolve)
}
