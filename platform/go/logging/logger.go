package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultService names the rentals backend in Cloud Logging and Error Reporting.
const DefaultService = "palmyra-rentals"

// Config controls the JSON logger shared by the rentals binaries.
type Config struct {
	// Component identifies the emitting binary (e.g. "api-server", "rentals-cli").
	Component string
	// Level is the minimum severity ("debug", "info", "warn", "error"); empty means info.
	Level string
	// Service and Version fill serviceContext so Error Reporting groups entries per release.
	// Service defaults to DefaultService.
	Service string
	Version string
	// Output receives encoded entries; nil means stdout.
	Output io.Writer
}

// NewLogger builds a zap logger whose entries parse as Cloud Logging structured payloads.
// Every entry carries serviceContext and, when set, the component.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, err
		}
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(out), level)

	service := cfg.Service
	if service == "" {
		service = DefaultService
	}
	serviceContext := []zap.Field{zap.String("service", service)}
	if cfg.Version != "" {
		serviceContext = append(serviceContext, zap.String("version", cfg.Version))
	}

	fields := []zap.Field{zap.Dict("serviceContext", serviceContext...)}
	if cfg.Component != "" {
		fields = append(fields, zap.String("component", cfg.Component))
	}

	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(fields...), nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stack_trace",
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    severityEncoder,
	}
}

// severityEncoder maps zap levels onto Cloud Logging LogSeverity names.
func severityEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.DebugLevel:
		enc.AppendString("DEBUG")
	case zapcore.InfoLevel:
		enc.AppendString("INFO")
	case zapcore.WarnLevel:
		enc.AppendString("WARNING")
	case zapcore.ErrorLevel:
		enc.AppendString("ERROR")
	case zapcore.DPanicLevel:
		enc.AppendString("CRITICAL")
	case zapcore.PanicLevel:
		enc.AppendString("ALERT")
	case zapcore.FatalLevel:
		enc.AppendString("EMERGENCY")
	default:
		enc.AppendString("DEFAULT")
	}
}
