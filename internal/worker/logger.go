package worker

import (
	"fmt"

	"github.com/storefront-next/internal/logger"

	"go.uber.org/zap"
)

// asynqLogger 将 asynq 内部日志转发到 zap
type asynqLogger struct {
	sugar *zap.SugaredLogger
}

func newAsynqLogger() *asynqLogger {
	return &asynqLogger{sugar: logger.Component("asynq")}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.sugar.Debug(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { l.sugar.Info(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.sugar.Warn(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.sugar.Error(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.sugar.Fatal(fmt.Sprint(args...)) }
