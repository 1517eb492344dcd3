package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger routes cron's internal logging to zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

// NewCronLogger adapts a zap logger to cron.Logger
func NewCronLogger(l *zap.Logger) cron.Logger {
	return &cronLogger{sugar: l.Named("cron").Sugar()}
}

// Info logs routine scheduler events at debug level
func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.sugar.Debugw(msg, keysAndValues...)
}

// Error logs scheduler failures, including recovered panics
func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
