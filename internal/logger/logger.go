// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// The service writes lifecycle and error events as JSON.  With
// `log.directory` set, events go to one file per day under that directory,
// rotated, compressed, and pruned by Lumberjack.  Without it they go to
// stdout.  When running in an interactive TTY (or with `log.console`) a
// colorized console copy is teed to stdout as well.
//
// The level comes from `log.level`, unless the LOG_LEVEL environment
// variable is set and non-empty, in which case it wins.
//
// Usage
// -----
//
//	log, err := logger.Init(cfg.Log(), runningInTTY())
//	if err != nil { … }
//	log.Info("listening", zap.String("url", cfg.Server().URL()))
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Init installs the process-wide logger and may run once.  Build does the
//   same work without touching globals, for tests and tooling.
// • Oxford commas, two spaces after periods.
package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/inventario/internal/apperr"
	"github.com/yanizio/inventario/internal/config"
)

// EnvLevel overrides `log.level` when set and non-empty.
const EnvLevel = "LOG_LEVEL"

var (
	initMu   sync.Mutex
	initDone bool
)

// Init builds the logger from cfg and installs it via zap.ReplaceGlobals.
// A second call fails with apperr.KindLogInit and leaves the first logger
// in place.
func Init(cfg config.Log, tee bool) (*zap.Logger, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if initDone {
		return nil, apperr.LogInit(errors.New("global logger already initialised"))
	}

	z, err := Build(cfg, tee)
	if err != nil {
		return nil, err
	}
	initDone = true

	// Make this the global logger so zap.L() and zap.S() work everywhere.
	zap.ReplaceGlobals(z)

	z.Info("logger online", zap.String("level", z.Level().String()), zap.Bool("tee", tee))
	return z, nil
}

// Build returns a logger for cfg without installing it.
func Build(cfg config.Log, tee bool) (*zap.Logger, error) {
	level, err := resolveLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		NameKey:      "logger",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	var (
		cores []zapcore.Core
		sink  zapcore.WriteSyncer
	)

	if cfg.Directory != "" {
		if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
			return nil, apperr.IO(err)
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(cfg.Directory, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	} else {
		sink = zapcore.Lock(os.Stdout)
	}
	cores = append(cores, zapcore.NewCore(encoder(cfg.Format, encCfg), sink, level))

	if (tee || cfg.Console) && cfg.Directory != "" {
		conCfg := encCfg
		conCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(conCfg),
			zapcore.Lock(os.Stdout),
			level,
		))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(sink),
		zap.AddCaller(),
	), nil
}

func encoder(format string, cfg zapcore.EncoderConfig) zapcore.Encoder {
	if format == "console" {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

// resolveLevel applies the LOG_LEVEL override, then falls back to the
// configured directive.
func resolveLevel(directive string) (zapcore.Level, error) {
	if raw, ok := os.LookupEnv(EnvLevel); ok {
		if !utf8.ValidString(raw) {
			return zapcore.InfoLevel, apperr.LogEnvFilter(fmt.Errorf("%s is not valid unicode", EnvLevel))
		}
		if raw != "" {
			lvl, err := zapcore.ParseLevel(raw)
			if err != nil {
				return zapcore.InfoLevel, apperr.LogFromEnv(fmt.Errorf("%s: %w", EnvLevel, err))
			}
			return lvl, nil
		}
	}

	lvl, err := zapcore.ParseLevel(directive)
	if err != nil {
		return zapcore.InfoLevel, apperr.LogDirective(fmt.Errorf("log.level: %w", err))
	}
	return lvl, nil
}
