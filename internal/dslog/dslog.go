// Package dslog provides the per-call logging sink used by every
// datashuttle-go operation.
//
// The source project keeps one mutable module-level logger
// (datashuttle/utils/ds_logger.py) that every function reaches into. Per
// spec.md §9 ("Global module logger → context-carried logger"), this
// package instead hands each top-level operation its own short-lived
// sink: Open returns a *Sink carrying a correlation ID, writes to
// `<local_path>/.datashuttle/logs/<command>_<id>.log`, and the caller
// closes it on return. No package-level *zap.Logger is ever stored.
package dslog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/teris-io/shortid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sid generates short, human-readable run IDs for log file names,
// mirroring the teacher's cmn.GenUUID (itself a shortid.Shortid
// wrapper): one package-level generator seeded once at init, since
// shortid.Shortid is safe for concurrent use.
var sid = shortid.MustNew(1, shortid.DefaultABC, 0)

// Sink is a per-call logging scope. It is not safe for concurrent use by
// more than the single operation it was opened for.
type Sink struct {
	logger *zap.Logger
	file   *os.File
	path   string
	id     string
}

// Open starts a new log sink for `command` (e.g. "create_folders",
// "validate_project") rooted at projectLocalPath/.datashuttle/logs.
func Open(projectLocalPath, command string) (*Sink, error) {
	logDir := filepath.Join(projectLocalPath, ".datashuttle", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("dslog: creating log dir: %w", err)
	}

	id := sid.MustGenerate()
	fileName := fmt.Sprintf("%s_%s.log", command, id)
	path := filepath.Join(logDir, fileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("dslog: opening log file: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(f),
		zapcore.DebugLevel,
	)
	logger := zap.New(core).With(
		zap.String("command", command),
		zap.String("run_id", id),
	)

	return &Sink{logger: logger, file: f, path: path, id: id}, nil
}

func (s *Sink) Path() string { return s.path }
func (s *Sink) ID() string   { return s.id }

func (s *Sink) Info(msg string, fields ...zap.Field)  { s.logger.Info(msg, fields...) }
func (s *Sink) Warn(msg string, fields ...zap.Field)  { s.logger.Warn(msg, fields...) }
func (s *Sink) Error(msg string, fields ...zap.Field) { s.logger.Error(msg, fields...) }

func (s *Sink) Debug(msg string, fields ...zap.Field) { s.logger.Debug(msg, fields...) }

// Close flushes and closes the sink. Safe to call once per Open.
func (s *Sink) Close() error {
	_ = s.logger.Sync()
	return s.file.Close()
}

// Elapsed is a convenience field for "operation finished in" log lines.
func Elapsed(since time.Time) zap.Field {
	return zap.Duration("elapsed", time.Since(since))
}
