// Package logger provides the engine's unified structured-logging setup.
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level is a logging severity.
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config controls the global logger's level, format, and sink.
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig returns a console logger writing to stdout at info level.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init sets up the global logger. Only the first call takes effect.
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get returns the global logger, initializing it with defaults if needed.
func Get() *zerolog.Logger {
	// Init runs its body once; after an earlier Init this call is a no-op.
	Init(DefaultConfig())
	return &logger
}

// WithContext returns a logger enriched with identifiers carried on ctx.
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if jobID, ok := ctx.Value("job_id").(string); ok {
		l = l.With().Str("job_id", jobID).Logger()
	}

	if unit, ok := ctx.Value("unit_id").(string); ok {
		l = l.With().Str("unit_id", unit).Logger()
	}

	return &l
}

func Debug() *zerolog.Event {
	return Get().Debug()
}

func Info() *zerolog.Event {
	return Get().Info()
}

func Warn() *zerolog.Event {
	return Get().Warn()
}

func Error() *zerolog.Event {
	return Get().Error()
}

func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError starts an error-level event carrying err.
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField returns a logger with one extra structured field attached.
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields returns a logger with several extra structured fields attached.
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// SolverLogger is the roster solver's domain-specific logger: it tags
// every event with the strategy in play (global two-pass or staged
// six-stage decomposition) so solve logs can be filtered out of the
// rest of the engine's output, and carries the solver's own vocabulary
// (passes, stages, locum fallbacks) rather than a generic job/duration
// shape.
type SolverLogger struct {
	base *zerolog.Logger
}

// NewSolverLogger creates a logger tagged component=solver.
func NewSolverLogger() *SolverLogger {
	l := Get().With().Str("component", "solver").Logger()
	return &SolverLogger{base: &l}
}

// StartSolve records the beginning of a solve over a horizon, under the
// given strategy ("global" or "staged").
func (l *SolverLogger) StartSolve(strategy string, persons, days int) {
	l.base.Info().
		Str("strategy", strategy).
		Int("persons", persons).
		Int("days", days).
		Msg("starting roster solve")
}

// PassComplete records one CP-SAT pass finishing, for the global
// two-pass solver's nights-only and full-objective passes.
func (l *SolverLogger) PassComplete(pass string, duration time.Duration, status string, objectiveValue float64) {
	l.base.Info().
		Str("pass", pass).
		Dur("duration", duration).
		Str("status", status).
		Float64("objective", objectiveValue).
		Msg("solver pass complete")
}

// StageStarted records one staged-solver stage beginning to run against
// the shared partial roster.
func (l *SolverLogger) StageStarted(stage string, persons, days int) {
	l.base.Info().
		Str("stage", stage).
		Int("persons", persons).
		Int("days", days).
		Msg("starting stage")
}

// StageCompleted records one staged-solver stage finishing, including
// how many of its targeted slots it had to leave unassigned.
func (l *SolverLogger) StageCompleted(stage string, duration time.Duration, succeeded bool, unassigned int) {
	ev := l.base.Info()
	if !succeeded {
		ev = l.base.Warn()
	}
	ev.Str("stage", stage).
		Dur("duration", duration).
		Bool("succeeded", succeeded).
		Int("unassigned", unassigned).
		Msg("stage complete")
}

// ConstraintViolation records a hard-constraint check that failed
// during validation of a candidate or partial roster.
func (l *SolverLogger) ConstraintViolation(invariant, details string) {
	l.base.Warn().
		Str("invariant", invariant).
		Str("details", details).
		Msg("constraint violation")
}

// LocumFallback records a solve pass falling back to pure locum slack
// because no feasible staffed solution was found.
func (l *SolverLogger) LocumFallback(reason string) {
	l.base.Warn().
		Str("reason", reason).
		Msg("falling back to locum-only roster")
}
