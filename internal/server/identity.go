package server

import (
	"context"
	"net/http"
	"strconv"

	svcErr "github.com/emberapp/ember-backend/internal/errors"
)

type ctxKey int

const userIDKey ctxKey = iota

// RequireUser reads the verified identity supplied by the upstream
// identity provider in the X-User-ID header and stores it on the
// request context. Token verification itself happens upstream; here an
// absent or garbled identity is rejected with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(r.Header.Get("X-User-ID"), 10, 64)
		if err != nil || id == 0 {
			svcErr.Write(w, svcErr.Unauthorized("missing or invalid user identity"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

// RequestUserID returns the authenticated requester id set by
// RequireUser, or 0 when the middleware did not run.
func RequestUserID(r *http.Request) uint64 {
	id, _ := r.Context().Value(userIDKey).(uint64)
	return id
}
