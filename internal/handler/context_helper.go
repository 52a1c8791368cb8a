package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ais-api/internal/middleware"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
	"github.com/noah-isme/ais-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireTeacherID resolves the calling tutor from the JWT claims. It writes
// the 401 itself and returns "" when no identity is present.
func requireTeacherID(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return ""
	}
	return claims.UserID
}
