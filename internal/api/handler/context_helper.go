package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/api/middleware"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/service"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/jwt"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/response"
)

// MustGetCaller reads the identity set by the JWT middleware. When it is
// missing a 401 is written and ok is false; the caller should return.
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID := c.GetString(middleware.CtxUserID)
	userType := c.GetString(middleware.CtxUserType)
	if userID == "" || userType == "" {
		response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
		return service.Caller{}, false
	}
	return service.Caller{
		UserID:    userID,
		UserType:  userType,
		CompanyID: c.GetString(middleware.CtxCompanyID),
	}, true
}

// MustGetClaims returns the parsed access token.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
		return nil, false
	}
	return claims, true
}

// bindFailed writes the binding error as a 400 validation response.
func bindFailed(c *gin.Context, err error) {
	response.ValidationFailed(c, err.Error())
}
