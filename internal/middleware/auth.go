package middleware

import (
	"net/http"
	"strings"

	"github.com/Strob0t/TaskForge/internal/expr"
)

const (
	headerUserID = "X-User-ID"
	headerGroups = "X-User-Groups"
)

// Authentication reads the calling principal from request headers and puts
// it on the context. The engine trusts the headers; an authenticating proxy
// in front of it is expected to have verified them. Requests without a user
// header pass through anonymous: reads still work, audit events carry no
// user, and expressions touching the current user fail evaluation.
func Authentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(headerUserID)
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}
		auth := expr.Authentication{UserID: userID}
		if raw := r.Header.Get(headerGroups); raw != "" {
			for _, g := range strings.Split(raw, ",") {
				if g = strings.TrimSpace(g); g != "" {
					auth.Groups = append(auth.Groups, g)
				}
			}
		}
		ctx := expr.WithAuthentication(r.Context(), auth)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
