package core

import (
	"context"
	"maps"
	"sort"
	"strings"
	"time"
)

const metricPrefix = "kaduu."

// NopMetricsRecorder drops every measurement. Nodes built without
// WithMetricsRecorder use it.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}

// operationMetric names the series of one node operation, for example
// kaduu.search.total or kaduu.execute.duration_ms.
func operationMetric(operation string, series string) string {
	return metricPrefix + operation + "." + series
}

func (n *Node) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if n == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	elapsed := time.Since(startedAt)

	contextFields := cloneFields(fields)
	contextFields["operation"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = elapsed.Milliseconds()
	if err != nil {
		contextFields["error"] = ErrorMessage(err)
		if rich := MapError(err); rich != nil {
			contextFields["error_code"] = rich.TextCode
		}
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
		"node":      n.config.NodeName,
	}
	if code, ok := contextFields["error_code"].(string); ok && code != "" {
		tags["error_code"] = code
	}

	if n.metricsRecorder != nil {
		n.metricsRecorder.IncCounter(ctx, operationMetric(operation, "total"), 1, maps.Clone(tags))
		n.metricsRecorder.ObserveHistogram(ctx, operationMetric(operation, "duration_ms"), float64(elapsed.Milliseconds()), maps.Clone(tags))
	}

	if err != nil {
		n.logWithLevel(ctx, "warn", operation+" failed", contextFields)
		return
	}
	n.logWithLevel(ctx, "debug", operation+" succeeded", contextFields)
}

func (n *Node) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if n == nil || n.logger == nil {
		return
	}
	logger := n.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	safe := RedactSensitiveMap(fields)
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(safe))
	}
	args := flattenFields(safe)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	case "debug":
		logger.Debug(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
