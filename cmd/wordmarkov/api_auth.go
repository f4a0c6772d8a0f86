package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// authHeader carries the API key on every /api request.
const authHeader = "wordmarkov-auth"

// AuthAPI guards the API with a single shared key.
type AuthAPI struct {
	keyHash [sha256.Size]byte
	open    bool
	logger  *slog.Logger
}

// NewAuthAPI creates the key check. With an empty key the API is open.
func NewAuthAPI(apiKey string, logger *slog.Logger) *AuthAPI {
	if apiKey == "" {
		logger.Warn("No api_key configured, the API is open to anyone who can reach it")
	}
	return &AuthAPI{
		keyHash: sha256.Sum256([]byte(apiKey)),
		open:    apiKey == "",
		logger:  logger,
	}
}

// Authenticate checks for a valid key in the wordmarkov-auth header before
// passing the request on. Keys are compared by hash in constant time.
func (a *AuthAPI) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.open {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get(authHeader)
		if apiKey == "" {
			respondWithError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}
		keyHash := sha256.Sum256([]byte(apiKey))
		if subtle.ConstantTimeCompare(keyHash[:], a.keyHash[:]) != 1 {
			a.logger.Debug("Rejected request with invalid API key", "remote_addr", r.RemoteAddr)
			respondWithError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}
