package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}

func bindError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, http.StatusBadRequest, "invalid payload")
}
