package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/linkcut/linkcut/internal/handlers"
)

// RequestMeta is a middleware that adds the visitor IP, user-agent, and
// referrer to the request context. The IP is taken as the transport layer
// reports it (proxy header or socket address), with no validation or
// normalization; NAT and forged headers make per-IP counts coarse, which is
// a documented limitation of the analytics.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			VisitorIP: clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}
