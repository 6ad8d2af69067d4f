package auth

import (
	"crypto/subtle"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/markussiebert/dnscope/internal/logger"
)

// Config represents authentication configuration
type Config struct {
	Username     string
	PasswordHash string // bcrypt hash
}

// Middleware creates a basic auth middleware
func Middleware(config Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			userOK := subtle.ConstantTimeCompare([]byte(username), []byte(config.Username)) == 1
			// Always run bcrypt so an unknown user costs as much as a wrong password.
			passErr := bcrypt.CompareHashAndPassword([]byte(config.PasswordHash), []byte(password))
			if !userOK || passErr != nil {
				logger.Warn("Rejected credentials for %q from %s", username, r.RemoteAddr)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="dnscope"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte("401 Unauthorized\n"))
}
