package logger

import (
	"context"
	"errors"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger 把 gorm 日志转到 zap；ctx 中带有请求日志时沿用其字段
type GormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger debug 模式记录每条 SQL，其余模式只记录慢查询与错误
func NewGormLogger(mode string, slowThreshold time.Duration) *GormLogger {
	l := &GormLogger{level: gormlogger.Warn, slowThreshold: slowThreshold}
	if mode == "debug" {
		l.level = gormlogger.Info
	}
	if l.slowThreshold <= 0 {
		l.slowThreshold = defaultSlowQuery
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		FromContext(ctx).Infow("gorm_info", "message", msg, "args", args)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		FromContext(ctx).Warnw("gorm_warn", "message", msg, "args", args)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		FromContext(ctx).Errorw("gorm_error", "message", msg, "args", args)
	}
}

// Trace 记录未找到不算失败
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := elapsed > l.slowThreshold

	switch {
	case failed && l.level >= gormlogger.Error:
	case slow && l.level >= gormlogger.Warn:
	case l.level >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	log := FromContext(ctx).With("elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	switch {
	case failed && l.level >= gormlogger.Error:
		log.Errorw("gorm_query_failed", "error", err)
	case slow && l.level >= gormlogger.Warn:
		log.Warnw("gorm_slow_query")
	default:
		log.Debugw("gorm_query")
	}
}
