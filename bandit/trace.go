package bandit

import "context"

type ctxKey string

// TraceIDKey is the context key Engine looks up to tag its log lines,
// letting a caller correlate a Choose/Reward pair across log output
// the same way the request middleware upstream of this package does.
const TraceIDKey ctxKey = "trace_id"

// TraceIDFromContext returns the trace id stored under TraceIDKey, or
// "" if none was set.
func TraceIDFromContext(ctx context.Context) string {
	if v := ctx.Value(TraceIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
