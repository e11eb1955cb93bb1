package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeParse,
				Message: "archive has no payload",
			},
			wantMessage: "[PARSE] archive has no payload",
		},
		{
			name: "error with dataset and cause",
			appError: &AppError{
				Type:    ErrTypeFetch,
				Dataset: "cboe.vix_spx",
				Message: "download failed",
				Cause:   fmt.Errorf("connection refused"),
			},
			wantMessage: "[FETCH] cboe.vix_spx: download failed: connection refused",
		},
		{
			name: "context is rendered in key order",
			appError: &AppError{
				Type:    ErrTypeParse,
				Message: "bad date",
				Context: map[string]interface{}{"row": 12, "column": "date"},
			},
			wantMessage: "[PARSE] bad date (column=date, row=12)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewTransformError("interpolation underdetermined", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParseError("bad cell", nil).
		WithDataset("crsp.returns").
		WithRow(3).
		WithContext("column", "PRC")

	assert.Equal(t, "crsp.returns", err.Dataset)
	assert.Equal(t, 3, err.Context["row"])
	assert.Equal(t, "PRC", err.Context["column"])
	assert.Equal(t, []any{"error_type", "PARSE", "dataset", "crsp.returns", "column", "PRC", "row", 3}, err.LogAttrs())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want ErrorType
	}{
		{"fetch", NewFetchError("x", nil), ErrTypeFetch},
		{"parse", NewParseError("x", nil), ErrTypeParse},
		{"transform", NewTransformError("x", nil), ErrTypeTransform},
		{"storage", NewStorageError("x", nil), ErrTypeStorage},
		{"config", NewConfigError("x", nil), ErrTypeConfig},
		{"not found", NewNotFoundError("table spx"), ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestIsType(t *testing.T) {
	inner := NewFetchError("status 404", nil)
	outer := NewStorageError("save failed", inner)
	wrapped := fmt.Errorf("step persist: %w", outer)

	assert.True(t, IsType(wrapped, ErrTypeStorage))
	assert.True(t, IsType(wrapped, ErrTypeFetch))
	assert.False(t, IsType(wrapped, ErrTypeParse))
	assert.False(t, IsType(errors.New("plain"), ErrTypeFetch))
	assert.False(t, IsType(nil, ErrTypeFetch))
}

func TestAsAppError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewParseError("bad", nil))

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, ErrTypeParse, appErr.Type)

	_, ok = AsAppError(errors.New("plain"))
	assert.False(t, ok)
}
