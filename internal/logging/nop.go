package logging

import "context"

// NopLogger discards everything. Useful in tests and as a default when
// no logger is configured.
type NopLogger struct{}

var _ Logger = NopLogger{}

func (NopLogger) Debug(context.Context, string, ...any) {}
func (NopLogger) Info(context.Context, string, ...any)  {}
func (NopLogger) Warn(context.Context, string, ...any)  {}
func (NopLogger) Error(context.Context, string, ...any) {}
func (l NopLogger) With(...any) Logger                  { return l }
