package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raiyan37/Centinel/internal/core"
)

func TestErrorFromDomain(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"unauthorized", core.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"not found", core.NotFoundf("pot", "p1"), http.StatusNotFound, CodeNotFound},
		{"invalid amount", core.ErrInvalidAmount, http.StatusUnprocessableEntity, CodeInvalidAmount},
		{"field validation", &core.ValidationError{Field: "name", Message: "is required"}, http.StatusUnprocessableEntity, CodeValidation},
		{"insufficient balance", core.ErrInsufficientBalance, http.StatusConflict, CodeInsufficientBalance},
		{"insufficient pot balance", fmt.Errorf("withdraw: %w", core.ErrInsufficientPotBalance), http.StatusConflict, CodeInsufficientPotBalance},
		{"duplicate", core.ErrDuplicateCategoryOrTheme, http.StatusConflict, CodeDuplicate},
		{"infrastructure", errors.New("disk I/O error"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorFromDomain(tt.err).Write(rec)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestInternalErrorsHideTheCause(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorFromDomain(errors.New("open /var/data/centinel.db: permission denied")).Write(rec)
	assert.NotContains(t, rec.Body.String(), "permission denied")
}

func TestValidationErrorDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorFromDomain(&core.ValidationError{Field: "theme", Message: "is not a known theme"}).Write(rec)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Error.Details, 1)
	assert.Equal(t, "theme", body.Error.Details[0].Field)

	rec = httptest.NewRecorder()
	ValidationErrorResponse([]FieldError{{Field: "name", Message: "is required", Type: "required"}}).Write(rec)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "name: is required", body.Error.Message)
}

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/pots/p1").
		Body(map[string]string{"id": "p1"}).
		Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/pots/p1", rec.Header().Get("Location"))
	assert.JSONEq(t, `{"id":"p1"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Values that cannot be encoded become a 500
	rec = httptest.NewRecorder()
	NewJSONResponse().Body(map[string]any{"bad": make(chan int)}).Write(rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
