package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownAsComputation(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrComputation.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Contains(t, appErr.Error(), "boom")
}

func TestCloneKeepsCodeForErrorsIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Clone(ErrBusinessRule, "course is full"))
	assert.True(t, stdErrors.Is(err, ErrBusinessRule))
	assert.False(t, stdErrors.Is(err, ErrNotFound))
	assert.True(t, IsCode(err, ErrBusinessRule.Code))
	assert.Equal(t, "course is full", FromError(err).Message)
}

func TestNilReceivers(t *testing.T) {
	var e *Error
	assert.Equal(t, "<nil>", e.Error())
	assert.Nil(t, e.Unwrap())
	assert.Nil(t, Clone(nil, "x"))
	assert.Nil(t, FromError(nil))
}

func TestBusinessRuleCarriesDetails(t *testing.T) {
	cause := fmt.Errorf("missing prerequisites: Databases I")
	err := BusinessRule(cause, cause.Error(), map[string]string{"reason": "prerequisites_missing"})
	assert.True(t, stdErrors.Is(err, ErrBusinessRule))
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, "missing prerequisites: Databases I", err.Message)
	assert.NotNil(t, err.Details)
	assert.Equal(t, "missing prerequisites: Databases I", err.Error())
}

func TestErrorMessageIncludesDistinctCause(t *testing.T) {
	err := Computation(fmt.Errorf("connection refused"), "failed to load student")
	assert.Equal(t, "failed to load student: connection refused", err.Error())

	assert.Equal(t, "not found", New("NOT_FOUND", http.StatusNotFound, "not found").Error())
}
