package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	logger, err := NewLogger(Config{Component: "test", Level: "WARN"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.InfoLevel))
	require.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = NewLogger(Config{Level: "loud"})
	require.Error(t, err)
}

func TestNewLoggerEntryShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		cfg            Config
		write          func(*zap.Logger)
		severity       string
		serviceContext map[string]any
		component      any
	}{
		{
			name:           "defaults to the rentals service",
			cfg:            Config{Component: "api-server"},
			write:          func(l *zap.Logger) { l.Info("listing created") },
			severity:       "INFO",
			serviceContext: map[string]any{"service": DefaultService},
			component:      "api-server",
		},
		{
			name:           "explicit service and version",
			cfg:            Config{Service: "rentals-cli", Version: "2024.06.1"},
			write:          func(l *zap.Logger) { l.Warn("slug fallback used") },
			severity:       "WARNING",
			serviceContext: map[string]any{"service": "rentals-cli", "version": "2024.06.1"},
		},
		{
			name:           "error severity",
			cfg:            Config{Component: "api-server", Level: "error"},
			write:          func(l *zap.Logger) { l.Error("cleanup incomplete") },
			severity:       "ERROR",
			serviceContext: map[string]any{"service": DefaultService},
			component:      "api-server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.cfg.Output = &buf
			logger, err := NewLogger(tt.cfg)
			require.NoError(t, err)

			tt.write(logger)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			require.Equal(t, tt.severity, entry["severity"])
			require.Equal(t, tt.serviceContext, entry["serviceContext"])
			require.Equal(t, tt.component, entry["component"])
			require.NotEmpty(t, entry["timestamp"])
			require.NotEmpty(t, entry["message"])
		})
	}
}

func TestSeverityEncoderCoversFatalLevels(t *testing.T) {
	t.Parallel()

	enc := &severities{}
	for _, l := range []zapcore.Level{zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel} {
		severityEncoder(l, enc)
	}
	require.Equal(t, []string{"CRITICAL", "ALERT", "EMERGENCY"}, enc.values)
}

type severities struct {
	zapcore.PrimitiveArrayEncoder
	values []string
}

func (s *severities) AppendString(v string) { s.values = append(s.values, v) }

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewExample()
	require.Same(t, fallback, FromContextOr(context.Background(), fallback))
	require.NotNil(t, FromContextOr(context.Background(), nil))

	scoped := zap.NewNop()
	ctx := WithLogger(context.Background(), scoped)
	require.Same(t, scoped, FromContextOr(ctx, fallback))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	var scoped *zap.Logger
	handler := middleware.RequestID(RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = FromRequest(r, nil)
		w.WriteHeader(http.StatusTeapot)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil))

	require.NotNil(t, scoped)
	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.EqualValues(t, http.StatusTeapot, fields["status"])
	require.Equal(t, "/api/v1/properties", fields["path"])
	require.NotEmpty(t, fields["request_id"])
}
