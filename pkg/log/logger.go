// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log is the server-wide logging facade. It keeps the redis-style
// level names (debug, verbose, notice, warning) and printf call sites, and
// routes them through a zap core so output is structured and cheap when a
// level is disabled.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents the log level
type Level int

const (
	LevelDebug Level = iota
	LevelVerbose
	LevelNotice
	LevelWarning
	LevelError
)

var (
	mu      sync.RWMutex
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar   *zap.SugaredLogger
	verbose bool
)

func init() {
	sugar = newLogger(zapcore.Lock(os.Stdout)).Sugar()
}

func newLogger(sink zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, level)
	return zap.New(core, zap.Fields(zap.Int("pid", os.Getpid())))
}

// SetLevel sets the log level
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()

	verbose = l <= LevelVerbose
	switch l {
	case LevelDebug:
		level.SetLevel(zapcore.DebugLevel)
	case LevelVerbose, LevelNotice:
		level.SetLevel(zapcore.InfoLevel)
	case LevelWarning:
		level.SetLevel(zapcore.WarnLevel)
	case LevelError:
		level.SetLevel(zapcore.ErrorLevel)
	}
}

// SetLevelString sets the log level from its configuration name.
// Unknown names fall back to notice.
func SetLevelString(s string) {
	switch s {
	case "debug":
		SetLevel(LevelDebug)
	case "verbose":
		SetLevel(LevelVerbose)
	case "warning":
		SetLevel(LevelWarning)
	case "error":
		SetLevel(LevelError)
	default:
		SetLevel(LevelNotice)
	}
}

// SetFile redirects output to the given file path with rotation. An empty
// path keeps logging on stdout.
func SetFile(path string) {
	if path == "" {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    128, // MB
		MaxBackups: 4,
	})
	sugar = newLogger(sink).Sugar()
}

// Sync flushes any buffered log output.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugf(format, args...)
}

// Verbose logs a verbose message
func Verbose(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		sugar.Infof(format, args...)
	}
}

// Info logs a message at notice level
func Info(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infof(format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorf(format, args...)
}

// Fatal logs a fatal message and exits
func Fatal(format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Fatalf(format, args...)
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return level.Enabled(zapcore.DebugLevel)
}
