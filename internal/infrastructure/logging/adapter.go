// Package logging adapts pkg/logger to the application's Logger port.
package logging

import (
	"context"

	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/pkg/logger"
)

// Adapter satisfies port.Logger on top of *logger.Logger.
type Adapter struct {
	log *logger.Logger
}

var _ port.Logger = (*Adapter)(nil)

// New wraps log. A nil logger falls back to the global one.
func New(log *logger.Logger) *Adapter {
	if log == nil {
		log = logger.Global()
	}
	return &Adapter{log: log}
}

// Nop returns an adapter that discards everything.
func Nop() *Adapter {
	return &Adapter{log: logger.NewNop()}
}

func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	a.log.Debug(msg, keysAndValues...)
}

func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	a.log.Info(msg, keysAndValues...)
}

func (a *Adapter) Warn(msg string, keysAndValues ...interface{}) {
	a.log.Warn(msg, keysAndValues...)
}

func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	a.log.Error(msg, keysAndValues...)
}

func (a *Adapter) With(keysAndValues ...interface{}) port.Logger {
	return &Adapter{log: a.log.With(keysAndValues...)}
}

func (a *Adapter) WithContext(ctx context.Context) port.Logger {
	return &Adapter{log: a.log.WithContext(ctx)}
}
