package middleware

import "context"

type contextKey string

const ctxPerformerID contextKey = "performer_id"

// PerformerIDFromContext returns the acting user's id, or "" when the
// request carried none.
func PerformerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxPerformerID).(string); ok {
		return v
	}
	return ""
}

func WithPerformerID(ctx context.Context, performerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPerformerID, performerID)
}
