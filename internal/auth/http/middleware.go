package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/zcorvus/zauth/internal/auth/store"
	"github.com/zcorvus/zauth/pkg/httpx"
	"github.com/zcorvus/zauth/pkg/slogx"
)

// reconcileRole settles the caller's role against their entitlement token
// before the request proceeds. Runs after AuthnMiddleware on every
// authenticated route, so an expired token demotes (and an active one
// promotes) on the very next request. Admin accounts are never touched.
// The refreshed role replaces the one from the JWT in the request context.
func (r *Router) reconcileRole() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			log := slogx.FromContext(ctx)

			userID := httpx.UserIDFromContext(ctx)
			if userID == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "No token provided")
				return
			}

			if httpx.RoleFromContext(ctx) == "admin" {
				next.ServeHTTP(w, req)
				return
			}

			change, err := r.EntitlementService.Reconcile(ctx, userID)
			if err != nil {
				// Token subject no longer exists, e.g. account deleted
				// after the JWT was issued.
				if errors.Is(err, store.ErrNotFound) {
					httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				log.Error("entitlement reconciliation failed", "user_id", userID, "err", err)
				httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			if change.Changed {
				log.Info("role reconciled",
					"user_id", userID,
					"role", change.NewRole.String(),
					"reason", change.Reason,
				)
			}

			ctx = context.WithValue(ctx, httpx.CtxKeyRole, change.NewRole.String())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
