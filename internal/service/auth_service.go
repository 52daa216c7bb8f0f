package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/config"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/policy"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/repository"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/jwt"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/metrics"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/slugify"
)

var (
	ErrAlreadyAuthenticated = errors.New("You are already signed in.")
	ErrEmailExists          = errors.New("A user with that email already exists.")
	ErrInvalidCredentials   = errors.New("Please enter a correct email and password.")
	ErrUserInactive         = errors.New("This account is inactive.")
	ErrInvalidRefreshToken  = errors.New("Invalid refresh token.")
	ErrTokenRevoked         = errors.New("Token has been revoked.")
	ErrOldPasswordMismatch  = errors.New("Your old password was entered incorrectly.")
	ErrUserNotFound         = errors.New("No user found")
)

// slug collisions are retried this many times before giving up
const maxSlugAttempts = 5

// AuthService sign-up, login and token lifecycle
type AuthService interface {
	SignupCompany(ctx context.Context, req *dto.SignupCompanyRequest, alreadyAuthenticated bool) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, jti string, remaining time.Duration) error
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	Me(ctx context.Context, userID string) (*dto.MeResponse, error)
	Permissions(userType string) *dto.PermissionsResponse
	IsActive(ctx context.Context, userID string) (bool, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	tokens TokenStore
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService creates an AuthService. tokens may be nil.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

func (s *authService) SignupCompany(ctx context.Context, req *dto.SignupCompanyRequest, alreadyAuthenticated bool) (*dto.TokenResponse, error) {
	if alreadyAuthenticated {
		return nil, ErrAlreadyAuthenticated
	}
	if err := validateNewPassword(req.Password1, req.Password2, s.cfg.Auth.MinPasswordLength); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	exists, err := s.repo.User.ExistsByEmail(ctx, email, "")
	if err != nil {
		s.logger.Error("check email failed", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := hashPassword(req.Password1)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name := strings.TrimSpace(req.CompanyName)
	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		UserType:     model.UserTypeCompany,
		IsActive:     true,
		DateJoined:   s.now(),
	}
	company := &model.Company{CompanyName: name}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.User.Create(ctx, user); err != nil {
			return err
		}
		slug, err := s.uniqueCompanySlug(ctx, tx, name)
		if err != nil {
			return err
		}
		company.UserID = user.UserID
		company.Slug = slug
		return tx.Company.Create(ctx, company)
	})
	if err != nil {
		s.logger.Error("create company failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	user.Company = company

	s.logger.Info("company signed up",
		zap.String("company_id", company.CompanyID),
		zap.String("slug", company.Slug),
	)
	return s.issue(user)
}

func (s *authService) uniqueCompanySlug(ctx context.Context, repo *repository.Repository, name string) (string, error) {
	for i := 0; i < maxSlugAttempts; i++ {
		slug := slugify.Company(name)
		taken, err := repo.Company.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}
	return "", fmt.Errorf("no free slug for company %q", name)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed login attempt", zap.String("email", email))
			metrics.ObserveLogin("invalid")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load user failed", zap.Error(err))
		return nil, err
	}

	if !checkPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("failed login attempt", zap.String("email", email))
		metrics.ObserveLogin("invalid")
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.ObserveLogin("inactive")
		return nil, ErrUserInactive
	}

	now := s.now()
	if err := s.repo.User.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		// a failed timestamp update does not block the login
		s.logger.Warn("update last login failed", zap.String("user_id", user.UserID), zap.Error(err))
	}
	user.LastLoginAt = &now

	metrics.ObserveLogin("success")
	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	if s.tokens != nil {
		revoked, err := s.tokens.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("check token blacklist failed", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// rotate: the used refresh token cannot be replayed
	if s.tokens != nil {
		if err := s.tokens.BlacklistToken(ctx, claims.ID, claims.Remaining()); err != nil {
			s.logger.Error("revoke refresh token failed", zap.Error(err))
			return nil, err
		}
	}

	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, jti string, remaining time.Duration) error {
	if s.tokens == nil || jti == "" {
		return nil
	}
	if err := s.tokens.BlacklistToken(ctx, jti, remaining); err != nil {
		s.logger.Error("revoke access token failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !checkPassword(user.PasswordHash, req.OldPassword) {
		return ErrOldPasswordMismatch
	}
	if err := validateNewPassword(req.NewPassword, req.NewPassword, s.cfg.Auth.MinPasswordLength); err != nil {
		return err
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.MustChangePassword = false
	user.UpdatedBy = &userID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update password failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*dto.MeResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toMeResponse(user)
	return &resp, nil
}

// IsActive reports whether userID exists and is not deactivated.
func (s *authService) IsActive(ctx context.Context, userID string) (bool, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		s.logger.Error("load user status failed", zap.String("user_id", userID), zap.Error(err))
		return false, err
	}
	return user.IsActive, nil
}

func (s *authService) Permissions(userType string) *dto.PermissionsResponse {
	return &dto.PermissionsResponse{
		UserType:    userType,
		Permissions: policy.For(userType),
	}
}

// issue signs a token pair for user.
func (s *authService) issue(user *model.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtMgr.GeneratePair(jwt.Identity{
		UserID:    user.UserID,
		UserType:  user.UserType,
		CompanyID: user.CompanyID(),
		Slug:      user.Slug(),
	})
	if err != nil {
		s.logger.Error("sign tokens failed", zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         toMeResponse(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
