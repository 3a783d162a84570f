package service

import (
	"database/sql"
	"errors"

	"github.com/noah-isme/academic-progression-api/internal/academic"
	"github.com/noah-isme/academic-progression-api/internal/models"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func notFound(message string) error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

// lookupError maps a repository read failure onto NotFound or ComputationError.
func lookupError(err error, notFoundMessage, failMessage string) error {
	if isNotFound(err) {
		return notFound(notFoundMessage)
	}
	return appErrors.Computation(err, failMessage)
}

func rejection(rej *academic.Rejection) error {
	return appErrors.BusinessRule(rej, rej.Message, rej)
}

func invalid(err error, message string) error {
	return appErrors.Invalid(err, message)
}

func pagination(page, size, total int) *models.Pagination {
	page, size = models.NormalizePage(page, size)
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
