package log

import (
	"context"

	"github.com/gmcdash/gmcdash/internal/tracing"
)

// Hook derives extra fields from the context for every log entry.
type Hook interface {
	Apply(ctx context.Context, msg string) []Field
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, msg string) []Field

func (f HookFunc) Apply(ctx context.Context, msg string) []Field {
	return f(ctx, msg)
}

func defaultHooks() []Hook {
	return []Hook{HookFunc(traceFields)}
}

// traceFields pulls trace id, request id and operation name out of the context.
func traceFields(ctx context.Context, _ string) []Field {
	if ctx == nil {
		return nil
	}

	var fields []Field

	if traceID, ok := tracing.GetTraceID(ctx); ok {
		fields = append(fields, String("trace_id", traceID))
	}

	if requestID, ok := tracing.GetRequestID(ctx); ok {
		fields = append(fields, String("request_id", requestID))
	}

	if operationName, ok := tracing.GetOperationName(ctx); ok {
		fields = append(fields, String("operation_name", operationName))
	}

	return fields
}
