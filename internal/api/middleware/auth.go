package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/policy"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/jwt"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/redis"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/response"
)

// gin context keys set by the auth middleware
const (
	CtxUserID    = "user_id"
	CtxUserType  = "user_type"
	CtxCompanyID = "company_id"
	CtxClaims    = "claims"
)

// UserStatus reports whether a signed-in user may still use the API.
type UserStatus interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

// JWTAuth validates the access token in "Authorization: Bearer <token>".
// rdb may be nil; revoked tokens are then only rejected once they expire.
// When users is set, tokens of deactivated users stop working at once.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client, users UserStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, msg := authenticate(c, jwtMgr, rdb)
		if claims == nil {
			response.Unauthorized(c, response.CodeUnauthenticated, msg)
			c.Abort()
			return
		}
		if users != nil {
			active, err := users.IsActive(c.Request.Context(), claims.UserID)
			if err != nil {
				response.InternalError(c)
				c.Abort()
				return
			}
			if !active {
				response.Unauthorized(c, response.CodeUnauthenticated, "account is inactive")
				c.Abort()
				return
			}
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalJWT sets the caller when a valid token is sent and lets anonymous
// requests through, for public routes that behave differently when signed in.
func OptionalJWT(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if claims, _ := authenticate(c, jwtMgr, rdb); claims != nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtMgr *jwt.Manager, rdb *redis.Client) (*jwt.Claims, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, "missing authorization header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, "invalid authorization header"
	}

	claims, err := jwtMgr.ParseToken(parts[1])
	if err != nil {
		return nil, "token invalid or expired"
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		return nil, "invalid token type"
	}

	if rdb != nil && claims.ID != "" {
		// a Redis failure lets the request through, like the rate limiter
		if revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
			return nil, "token has been revoked"
		}
	}
	return claims, ""
}

func setIdentity(c *gin.Context, claims *jwt.Claims) {
	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxUserType, claims.UserType)
	c.Set(CtxCompanyID, claims.CompanyID)
	c.Set(CtxClaims, claims)
}

// RequirePermission lets the request through only when the caller's user
// type holds every one of perms.
func RequirePermission(perms ...policy.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType := c.GetString(CtxUserType)
		if userType == "" {
			response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
			c.Abort()
			return
		}
		if !policy.Has(userType, perms...) {
			response.Forbidden(c, response.CodeForbidden, "You do not have permission to perform this action.")
			c.Abort()
			return
		}
		c.Next()
	}
}
