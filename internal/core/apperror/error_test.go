package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedAppErrorIsFound(t *testing.T) {
	err := fmt.Errorf("update CPO record: %w", NewDuplicate("CPO record", "recordDate", "2024-03-01"))

	assert.True(t, IsDuplicate(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(err))

	appErr, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, "2024-03-01", appErr.Details["value"])
}

func TestPlainErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	assert.False(t, IsAppError(err))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(err))
}

func TestCauseIsUnwrappedButNotRendered(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewUnavailable("ERP sales", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "ERP sales is unavailable", err.Message)
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestBusinessRuleKeepsCode(t *testing.T) {
	err := NewBusinessRule(CodeUnknownTank, "tank 9 is not configured").WithDetail("tank", 9)
	assert.True(t, HasCode(err, CodeUnknownTank))
	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, 9, err.Details["tank"])
}
