package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rajat7300609030-maker/education-hills-api/internal/service"
)

// resolveSession picks the session scope for a request: the explicit query
// parameter when present, otherwise the school's current session.
func resolveSession(c *gin.Context, sessions *service.SessionService) (string, error) {
	if session := strings.TrimSpace(c.Query("session")); session != "" {
		return session, nil
	}
	profile, err := sessions.Profile(c.Request.Context())
	if err != nil {
		return "", err
	}
	return profile.CurrentSession, nil
}
