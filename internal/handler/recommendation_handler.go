package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-progression-api/internal/service"
	"github.com/noah-isme/academic-progression-api/pkg/response"
)

type recommender interface {
	Recommend(ctx context.Context, studentID string) (*service.RecommendationResult, error)
}

type summarizer interface {
	Summary(ctx context.Context, studentID string) (*service.AcademicSummary, error)
}

// AcademicHandler serves the per-student academic views.
type AcademicHandler struct {
	ledger          summarizer
	recommendations recommender
}

// NewAcademicHandler constructs AcademicHandler.
func NewAcademicHandler(ledger summarizer, recommendations recommender) *AcademicHandler {
	return &AcademicHandler{ledger: ledger, recommendations: recommendations}
}

// Summary godoc
// @Summary Academic summary of a student
// @Description Cumulative GPA, credit tier, trend, credit analysis and graduation eligibility.
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/academic-summary [get]
func (h *AcademicHandler) Summary(c *gin.Context) {
	summary, err := h.ledger.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "academic summary retrieved", summary)
}

// Recommendations godoc
// @Summary Course recommendations for a student
// @Description Returns enrollment_open=false with a notice outside enrollment periods.
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/recommendations [get]
func (h *AcademicHandler) Recommendations(c *gin.Context) {
	result, err := h.recommendations.Recommend(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "recommendations generated"
	if !result.EnrollmentOpen {
		message = result.Notice
	}
	response.OK(c, message, result)
}
