// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	LogContainer     logContainer
	loggerInit       sync.Once
	simpleLoggerInit sync.Once

	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	root  = &swapCore{core: getConsoleCore()}
)

type logContainer struct {
	logger       *zap.Logger
	simpleLogger *zap.SugaredLogger
}

// GetLogger returns the pointer to the logger and creates one if none exists
func (l *logContainer) GetLogger() *zap.Logger {
	loggerInit.Do(func() {
		l.logger = zap.New(root)
	})
	return l.logger
}

// GetSimpleLogger returns the pointer to the sugared logger and creates one
// if none exists
func (l *logContainer) GetSimpleLogger() *zap.SugaredLogger {
	simpleLoggerInit.Do(func() {
		logger := zap.New(root)
		l.simpleLogger = logger.Sugar()
	})
	return l.simpleLogger
}

// String mirrors zap.String
func (l *logContainer) String(key string, val string) zap.Field {
	return zap.String(key, val)
}

// Int mirrors zap.Int
func (l *logContainer) Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// SetLevel changes the level of every logger handed out so far.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// SetLogFile tees all log output into a JSON file at path in addition to
// stdout. Loggers created before the call pick up the file as well.
func SetLogFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("unable to open logfile: %v", err)
	}
	root.set(zapcore.NewTee(getConsoleCore(), getJsonCore(zapcore.AddSync(f))))
	return nil
}

func getConsoleEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getJsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.EpochTimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func getConsoleCore() zapcore.Core {
	return zapcore.NewCore(getConsoleEncoder(), zapcore.AddSync(os.Stdout), level)
}

func getJsonCore(w zapcore.WriteSyncer) zapcore.Core {
	return zapcore.NewCore(getJsonEncoder(), w, level)
}

// swapCore forwards to a core that can be replaced after loggers were
// built on top of it.
type swapCore struct {
	mu   sync.RWMutex
	core zapcore.Core
}

func (s *swapCore) get() zapcore.Core {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.core
}

func (s *swapCore) set(c zapcore.Core) {
	s.mu.Lock()
	s.core = c
	s.mu.Unlock()
}

func (s *swapCore) Enabled(l zapcore.Level) bool {
	return s.get().Enabled(l)
}

// With binds fields to the current core, later swaps do not reach it.
func (s *swapCore) With(fields []zapcore.Field) zapcore.Core {
	return s.get().With(fields)
}

func (s *swapCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return s.get().Check(e, ce)
}

func (s *swapCore) Write(e zapcore.Entry, fields []zapcore.Field) error {
	return s.get().Write(e, fields)
}

func (s *swapCore) Sync() error {
	return s.get().Sync()
}
