package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewExternal("suggest connections", cause)

	assert.Equal(t, "EXTERNAL: suggest connections: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "VALIDATION: bad zoom", NewValidation("bad zoom").Error())
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewNotFound("note missing"))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, ErrorTypeNotFound, TypeOf(err))
	assert.Equal(t, ErrorTypeInternal, TypeOf(errors.New("plain")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))

	wrapped := Wrap(NewValidation("label required"), "select")
	assert.True(t, IsValidation(wrapped))
	assert.Contains(t, wrapped.Error(), "select: label required")

	plain := Wrap(errors.New("disk"), "read notes")
	assert.Equal(t, ErrorTypeInternal, TypeOf(plain))
	assert.ErrorContains(t, plain, "disk")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidation("x"), http.StatusBadRequest},
		{NewNotFound("x"), http.StatusNotFound},
		{NewConflict("x"), http.StatusConflict},
		{NewExternal("x", nil), http.StatusBadGateway},
		{NewUnavailable("x", nil), http.StatusServiceUnavailable},
		{NewInternal("x", nil), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestLogError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	LogError(logger, NewValidation("bad event"), "rejected")
	LogError(logger, NewExternal("llm", errors.New("timeout")), "failed")
	LogError(logger, nil, "ignored")

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
		assert.Equal(t, "VALIDATION", entries[0].ContextMap()["error_type"])
		assert.Equal(t, zap.ErrorLevel, entries[1].Level)
		assert.Equal(t, "EXTERNAL_SERVICE_ERROR", entries[1].ContextMap()["error_code"])
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("development", "")
	assert.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger("production", "warn")
	assert.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger("production", "chatty")
	assert.True(t, IsValidation(err))
}
