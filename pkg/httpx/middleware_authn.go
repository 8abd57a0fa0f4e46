package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/zcorvus/zauth/pkg/jwtx"
	"github.com/zcorvus/zauth/pkg/slogx"
)

// AuthnMiddleware verifies the bearer access token and injects the subject,
// role and claims into the request context. Refresh tokens are rejected even
// though they carry a valid signature.
func AuthnMiddleware(codec *jwtx.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "No token provided")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := codec.Verify(raw)
			if err != nil {
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "Invalid or expired token")
				return
			}

			if claims.IsRefresh() {
				writeBearerError(w, "Invalid or expired token")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// writeBearerError emits the RFC 6750 challenge header alongside the JSON
// envelope clients expect.
func writeBearerError(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, msg)
}
