package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/config"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/repository"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/jwt"
)

// Service groups every business service.
type Service struct {
	Auth    AuthService
	Account AccountService
	Shift   ShiftService
	Team    TeamService
}

// Caller is the authenticated user a request acts for.
type Caller struct {
	UserID    string
	UserType  string
	CompanyID string
}

// TokenStore revokes tokens before they expire. pkg/redis.Client implements it.
type TokenStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// NewService creates the service aggregate. tokens may be nil when Redis is
// unavailable; logout and refresh rotation then stop revoking tokens.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(cfg, repo, jwtMgr, tokens, logger),
		Account: NewAccountService(cfg, repo, logger),
		Shift:   NewShiftService(&cfg.Schedule, repo, logger),
		Team:    NewTeamService(repo, logger),
	}
}
