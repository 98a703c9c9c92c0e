package handlers

import "context"

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata used for visit accounting and
// telemetry. VisitorIP is whatever the transport reported; see the
// middleware package for the extraction rules.
type RequestMeta struct {
	VisitorIP string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}
