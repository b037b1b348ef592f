package handlers

import (
	"log/slog"
	"net/http"

	"creatures-server/internal/shared/cookies"
	"creatures-server/internal/shared/response"
)

type LogoutHandler struct{}

func NewLogoutHandler() *LogoutHandler {
	return &LogoutHandler{}
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "logout", "remote_addr", r.RemoteAddr)
	logger.Debug("Logout requested")

	cookies.ClearAuthCookie(w)

	response.Success(w, http.StatusOK, map[string]string{"status": "logged_out"})

	logger.Info("User logged out successfully")
}
