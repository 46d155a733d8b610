package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-records-api/internal/middleware"
	"github.com/noah-isme/class-records-api/internal/models"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
	"github.com/noah-isme/class-records-api/pkg/response"
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

// callerID resolves the authenticated teacher or writes a 401 and returns false.
func callerID(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if id := claims.TeacherID(); id != "" {
		return id, true
	}
	response.Error(c, appErrors.ErrUnauthorized)
	return "", false
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
