package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/config"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/api/handler"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/api/middleware"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/policy"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/jwt"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/redis"
)

// Setup builds the Gin engine with every route. rdb may be nil.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, users middleware.UserStatus, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup/company", middleware.OptionalJWT(jwtMgr, rdb), h.Auth.SignupCompany)
			auth.POST("/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, users))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.GET("/auth/permissions", h.Auth.Permissions)

			// member rules carry their own messages, checked in the service
			members := authorized.Group("/members")
			{
				members.POST("", h.Account.SignupEmployee)
				members.POST("/import", h.Account.ImportMembers)
			}
			authorized.GET("/company/members", h.Account.CompanyMembers)

			profiles := authorized.Group("/profiles")
			{
				profiles.PUT("/me", h.Account.UpdateOwnProfile)
				profiles.GET("/:slug", h.Account.GetProfile)
				profiles.PUT("/:slug", h.Account.FullUpdateProfile)
			}

			shifts := authorized.Group("/shift-patterns")
			{
				view := middleware.RequirePermission(policy.ViewShiftPattern)
				change := middleware.RequirePermission(policy.ChangeShiftPattern)

				shifts.GET("", view, h.Shift.ListPatterns)
				shifts.POST("", middleware.RequirePermission(policy.AddShiftPattern), h.Shift.CreatePattern)
				shifts.POST("/preview", view, h.Shift.Preview)
				shifts.GET("/:id", view, h.Shift.GetPattern)
				shifts.PUT("/:id", change, h.Shift.UpdatePattern)
				shifts.DELETE("/:id", middleware.RequirePermission(policy.DeleteShiftPattern), h.Shift.DeletePattern)
				shifts.POST("/:id/generate", change, h.Shift.Generate)
				shifts.GET("/:id/assignments", view, h.Shift.ListAssignments)
				shifts.GET("/:id/export", view, h.Shift.ExportAssignments)
			}

			teams := authorized.Group("/teams")
			{
				view := middleware.RequirePermission(policy.ViewTeam)
				change := middleware.RequirePermission(policy.ChangeTeam)

				teams.GET("", view, h.Team.ListTeams)
				teams.POST("", middleware.RequirePermission(policy.AddTeam), h.Team.CreateTeam)
				teams.GET("/:id", view, h.Team.GetTeam)
				teams.PUT("/:id", change, h.Team.UpdateTeam)
				teams.DELETE("/:id", middleware.RequirePermission(policy.DeleteTeam), h.Team.DeleteTeam)
				teams.PUT("/:id/members", change, h.Team.SetMembers)
			}
		}
	}

	return r
}
