package handlers

import (
	"net/http"

	"github.com/CrowderSoup/taskboard/services"
)

// AuthHandler handles authentication-related endpoints
type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// VerifyToken reports whether the presented token is valid and whom it names.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := bearerToken(r)
	if !ok {
		writeStatusError(w, http.StatusUnauthorized, "missing or malformed authorization")
		return
	}

	actor, err := h.authService.VerifyToken(tokenString)
	if err != nil {
		writeStatusError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"actor":  actor,
		"status": "valid",
	})
}
