package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"creatures-server/internal/shared/config"
)

// resolveRedirectURI validates a client-supplied redirect target against
// the configured frontend origin. Anything else falls back to the
// frontend URL to avoid open redirects.
func resolveRedirectURI(requested string) string {
	cfg := config.GlobalConfig

	if requested == "" {
		return cfg.Frontend.URL
	}
	if !strings.HasPrefix(requested, cfg.Frontend.URL) {
		return cfg.Frontend.URL
	}
	return requested
}

// redirectWithError redirects to the frontend with an error code
func redirectWithError(w http.ResponseWriter, r *http.Request, redirectURI, errorCode string) {
	if redirectURI == "" {
		redirectURI = config.GlobalConfig.Frontend.URL
	}
	errorURL := fmt.Sprintf("%s/auth/error?error=%s", redirectURI, errorCode)

	http.Redirect(w, r, errorURL, http.StatusTemporaryRedirect)
}
