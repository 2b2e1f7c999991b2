package requestid

import (
	"context"
	"net/http"

	"github.com/renstrom/shortuuid"
)

// Request IDs are embedded in HTTP headers using this key.
// This is the standard key used for request Ids. For example, opentelemetry uses the same one.
const MetadataKey = "x-request-id"

type contextKey struct{}

// FromContext returns the request Id stored in a context, if one is available.
// The second return value is true if the operation was successful.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// FromContextOrMissing returns the request Id stored in a context, if one is available.
// If none is available, the string "missing" is returned.
func FromContextOrMissing(ctx context.Context) string {
	if id, ok := FromContext(ctx); ok {
		return id
	}
	return "missing"
}

// AddToContext returns a new context derived from ctx that is annotated with an Id.
func AddToContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Middleware returns middleware that annotates incoming HTTP requests with an Id.
// Ids are generated using github.com/renstrom/shortuuid, stored in the request
// context and echoed back to the client in the response headers.
// If replace is false, ids already present in the request headers are kept.
func Middleware(replace bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(MetadataKey)
			if id == "" || replace {
				id = shortuuid.New()
				r.Header.Set(MetadataKey, id)
			}
			w.Header().Set(MetadataKey, id)
			next.ServeHTTP(w, r.WithContext(AddToContext(r.Context(), id)))
		})
	}
}
