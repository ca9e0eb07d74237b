package auth

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// Admin guards the mutating admin endpoints with HTTP basic auth against a
// bcrypt hash. With no hash configured every admin request is rejected.
type Admin struct {
	User string
	Hash []byte
}

// NewAdmin creates an Admin guard
func NewAdmin(user string, hash []byte) *Admin {
	return &Admin{User: user, Hash: hash}
}

// Check verifies the request's basic auth credentials
func (a *Admin) Check(r *http.Request) bool {
	if len(a.Hash) == 0 {
		return false
	}

	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(user), []byte(a.User)) != 1 {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.Hash, []byte(pass)) == nil
}

// Middleware wraps a handler, rejecting unauthenticated requests with 401
func (a *Admin) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Check(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
