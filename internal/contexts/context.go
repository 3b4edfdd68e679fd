package contexts

import (
	"context"

	"github.com/gmcdash/gmcdash/internal/isolation"
)

// ContextKey defines the context key type.
type ContextKey string

const (
	// containerContextKey is used to store the context container in the context.
	containerContextKey ContextKey = "context_container"
)

// WithProjectContext stores the resolved project context in the context.
// The project context itself is immutable; a re-authorization within the same
// request stores a freshly resolved one instead of mutating it.
func WithProjectContext(ctx context.Context, pc *isolation.ProjectContext) context.Context {
	container := getContainer(ctx)
	container.ProjectContext = pc

	return withContainer(ctx, container)
}

// GetProjectContext retrieves the resolved project context from the context.
func GetProjectContext(ctx context.Context) (*isolation.ProjectContext, bool) {
	container := getContainer(ctx)
	return container.ProjectContext, container.ProjectContext != nil
}

// WithCallerID stores the authenticated caller id in the context.
func WithCallerID(ctx context.Context, callerID string) context.Context {
	container := getContainer(ctx)
	container.CallerID = &callerID

	return withContainer(ctx, container)
}

// GetCallerID retrieves the authenticated caller id from the context.
func GetCallerID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.CallerID != nil {
		return *container.CallerID, true
	}

	return "", false
}

// WithTraceID stores the trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	container := getContainer(ctx)
	container.TraceID = &traceID

	return withContainer(ctx, container)
}

// GetTraceID retrieves the trace id from the context.
func GetTraceID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.TraceID != nil {
		return *container.TraceID, true
	}

	return "", false
}

// WithRequestID stores the request id in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	container := getContainer(ctx)
	container.RequestID = &requestID

	return withContainer(ctx, container)
}

// GetRequestID retrieves the request id from the context.
func GetRequestID(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.RequestID != nil {
		return *container.RequestID, true
	}

	return "", false
}

// WithOperationName stores the operation name in the context.
func WithOperationName(ctx context.Context, name string) context.Context {
	container := getContainer(ctx)
	container.OperationName = &name

	return withContainer(ctx, container)
}

// GetOperationName retrieves the operation name from the context.
func GetOperationName(ctx context.Context) (string, bool) {
	container := getContainer(ctx)
	if container.OperationName != nil {
		return *container.OperationName, true
	}

	return "", false
}

// AddError appends a request-scoped error for access logging.
func AddError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	container := getContainer(ctx)
	container.mu.Lock()
	container.Errors = append(container.Errors, err)
	container.mu.Unlock()
}

// GetErrors returns the request-scoped errors collected so far.
func GetErrors(ctx context.Context) []error {
	container := getContainer(ctx)
	container.mu.RLock()
	defer container.mu.RUnlock()

	return append([]error(nil), container.Errors...)
}
