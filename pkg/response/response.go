package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-progression-api/internal/models"
	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
)

// Envelope represents the common {success, message, data} response contract.
type Envelope struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, message string, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Success: true, Message: message, Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// OK responds with HTTP 200 and the given payload.
func OK(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusOK, message, data, nil)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, message, data, nil)
}

// Error sends a failure response; the message is the human-readable reason.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Success: false, Message: appErr.Message, Error: appErr})
}

// File streams a rendered document as an attachment.
func File(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, contentType, body)
}
