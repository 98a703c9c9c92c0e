package auth

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// SecretHeader carries the admin secret on guarded requests.
const SecretHeader = "X-Admin-Secret"

// AdminGuard returns a Huma operation middleware that rejects requests whose
// admin secret header does not verify.
func AdminGuard(api huma.API, verifier Verifier) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !verifier.Verify(ctx.Header(SecretHeader)) {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "incorrect admin secret")

			return
		}

		next(ctx)
	}
}
