package errors

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Production gets sampled JSON output at
// the configured level; every other environment gets a colored console logger.
func NewLogger(environment, level string) (*zap.Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
		config.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, NewValidation("invalid log level " + level).WithCode(CodeInvalidConfig)
		}
	} else if environment != "production" {
		lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	config.Level = lvl

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	)
}

// Fields returns structured log fields describing err.
func Fields(err error) []zap.Field {
	if err == nil {
		return nil
	}
	fields := []zap.Field{zap.Error(err)}

	var appErr *AppError
	if errors.As(err, &appErr) {
		fields = append(fields, zap.String("error_type", string(appErr.Type)))
		if appErr.Code != "" {
			fields = append(fields, zap.String("error_code", appErr.Code.String()))
		}
	}
	return fields
}

// LogError logs err at a level that matches its type: client mistakes at
// Warn, everything else at Error.
func LogError(logger *zap.Logger, err error, message string, fields ...zap.Field) {
	if err == nil || logger == nil {
		return
	}
	fields = append(fields, Fields(err)...)
	switch TypeOf(err) {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeConflict:
		logger.Warn(message, fields...)
	default:
		logger.Error(message, fields...)
	}
}
