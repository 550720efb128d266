package gologger

import (
	"context"
	"fmt"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-kaduu/core"
	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForJob resolves the glog pair and returns the go-job bridges for it.
// Both sides redact sensitive key/value arguments.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	resolvedProvider = Redacting(resolvedProvider)
	resolvedLogger = NewRedactingLogger(resolvedLogger)
	return resolvedProvider, resolvedLogger, ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}

// RedactingLogger masks the value of any sensitive key in the alternating
// key/value arguments before they reach the wrapped logger.
type RedactingLogger struct {
	next glog.Logger
}

func NewRedactingLogger(next glog.Logger) glog.Logger {
	if next == nil {
		return nil
	}
	if already, ok := next.(*RedactingLogger); ok {
		return already
	}
	return &RedactingLogger{next: next}
}

func (l *RedactingLogger) Trace(msg string, args ...any) { l.next.Trace(msg, RedactArgs(args)...) }
func (l *RedactingLogger) Debug(msg string, args ...any) { l.next.Debug(msg, RedactArgs(args)...) }
func (l *RedactingLogger) Info(msg string, args ...any)  { l.next.Info(msg, RedactArgs(args)...) }
func (l *RedactingLogger) Warn(msg string, args ...any)  { l.next.Warn(msg, RedactArgs(args)...) }
func (l *RedactingLogger) Error(msg string, args ...any) { l.next.Error(msg, RedactArgs(args)...) }
func (l *RedactingLogger) Fatal(msg string, args ...any) { l.next.Fatal(msg, RedactArgs(args)...) }

func (l *RedactingLogger) WithContext(ctx context.Context) glog.Logger {
	return NewRedactingLogger(l.next.WithContext(ctx))
}

type redactingProvider struct {
	next glog.LoggerProvider
}

// Redacting wraps every logger handed out by provider.
func Redacting(provider glog.LoggerProvider) glog.LoggerProvider {
	if provider == nil {
		return nil
	}
	if already, ok := provider.(redactingProvider); ok {
		return already
	}
	return redactingProvider{next: provider}
}

func (p redactingProvider) GetLogger(name string) glog.Logger {
	return NewRedactingLogger(p.next.GetLogger(name))
}

// RedactArgs returns a copy of args with sensitive values replaced. A
// trailing key without a value is kept as is.
func RedactArgs(args []any) []any {
	if len(args) == 0 {
		return args
	}
	out := make([]any, len(args))
	copy(out, args)
	for i := 0; i+1 < len(out); i += 2 {
		key := fmt.Sprint(out[i])
		redacted := core.RedactSensitiveMap(map[string]any{key: out[i+1]})
		out[i+1] = redacted[key]
	}
	return out
}

var (
	_ glog.Logger         = (*RedactingLogger)(nil)
	_ glog.LoggerProvider = redactingProvider{}
)
