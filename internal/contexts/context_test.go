package contexts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/gmcdash/gmcdash/internal/isolation"
)

func TestContainerRoundTrip(t *testing.T) {
	ctx := context.Background()

	_, ok := GetProjectContext(ctx)
	assert.False(t, ok)

	_, ok = GetCallerID(ctx)
	assert.False(t, ok)

	pc := isolation.NewProjectContext(uuid.New(), "alice", isolation.RoleStudent, "inst-1", nil, nil, true, false)

	ctx = WithProjectContext(ctx, pc)
	ctx = WithCallerID(ctx, "alice")
	ctx = WithTraceID(ctx, "gd-trace")
	ctx = WithRequestID(ctx, "gdr-request")
	ctx = WithOperationName(ctx, "GET /projects/:projectID/data")

	got, ok := GetProjectContext(ctx)
	assert.True(t, ok)
	assert.Same(t, pc, got)

	callerID, ok := GetCallerID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", callerID)

	traceID, ok := GetTraceID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "gd-trace", traceID)

	requestID, ok := GetRequestID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "gdr-request", requestID)

	opName, ok := GetOperationName(ctx)
	assert.True(t, ok)
	assert.Equal(t, "GET /projects/:projectID/data", opName)
}

func TestSeparateContextsDoNotShareContainers(t *testing.T) {
	ctxA := WithCallerID(context.Background(), "alice")
	ctxB := WithCallerID(context.Background(), "bob")

	callerA, _ := GetCallerID(ctxA)
	callerB, _ := GetCallerID(ctxB)

	assert.Equal(t, "alice", callerA)
	assert.Equal(t, "bob", callerB)
}

func TestAddErrorConcurrent(t *testing.T) {
	ctx := WithCallerID(context.Background(), "alice")

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			AddError(ctx, errors.New("boom"))
		}()
	}

	wg.Wait()

	assert.Len(t, GetErrors(ctx), 10)

	AddError(ctx, nil)
	assert.Len(t, GetErrors(ctx), 10)
}
