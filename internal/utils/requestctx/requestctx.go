package requestctx

import (
	"context"

	"github.com/romitgit/tc-project-service/internal/model"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	callerKey
)

// WithRequestID stores the correlation id of the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		return context.WithValue(context.Background(), requestIDKey, requestID)
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the correlation id of the current request, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithCaller stores the authenticated caller.
func WithCaller(ctx context.Context, caller *model.Caller) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, callerKey, caller)
}

// Caller returns the authenticated caller, or nil.
func Caller(ctx context.Context) *model.Caller {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(callerKey).(*model.Caller)
	return c
}
