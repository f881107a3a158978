package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultSlowQuery is used when NewStoreLogger is given no threshold.
const DefaultSlowQuery = 200 * time.Millisecond

// StoreLogger reports storage statements through zap. Bound values never
// reach the log: ParamsFilter strips them, so statements are logged with
// their placeholders and crisis log payloads stay out of log files.
type StoreLogger struct {
	log   *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

var (
	_ logger.Interface  = (*StoreLogger)(nil)
	_ gorm.ParamsFilter = (*StoreLogger)(nil)
)

// NewStoreLogger logs warnings and errors under the "store" logger name.
// A slow threshold of zero or less uses DefaultSlowQuery.
func NewStoreLogger(log *zap.Logger, slow time.Duration) *StoreLogger {
	if slow <= 0 {
		slow = DefaultSlowQuery
	}
	return &StoreLogger{log: log.Named("store"), level: logger.Warn, slow: slow}
}

func (l *StoreLogger) LogMode(level logger.LogLevel) logger.Interface {
	next := *l
	next.level = level
	return &next
}

// ParamsFilter drops the bound values of every statement before it is rendered.
func (l *StoreLogger) ParamsFilter(ctx context.Context, sql string, params ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *StoreLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.printf(logger.Info, zapcore.InfoLevel, msg, data)
}

func (l *StoreLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.printf(logger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *StoreLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.printf(logger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *StoreLogger) printf(min logger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.level < min {
		return
	}
	if ce := l.log.Check(level, fmt.Sprintf(msg, data...)); ce != nil {
		ce.Write()
	}
}

// Trace logs one finished statement. Failures log at error, slow statements
// at warn and, in info mode, every other statement at debug. A missing row
// is an ordinary lookup miss and only shows up in info mode.
func (l *StoreLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := elapsed > l.slow

	var level zapcore.Level
	var msg string
	switch {
	case failed && l.level >= logger.Error:
		level, msg = zapcore.ErrorLevel, "Statement failed"
	case slow && l.level >= logger.Warn:
		level, msg = zapcore.WarnLevel, "Slow statement"
	case l.level >= logger.Info:
		level, msg = zapcore.DebugLevel, "Statement executed"
	default:
		return
	}

	ce := l.log.Check(level, msg)
	if ce == nil {
		return
	}
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if slow {
		fields = append(fields, zap.Duration("threshold", l.slow))
	}
	ce.Write(fields...)
}
