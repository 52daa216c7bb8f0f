package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/config"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/policy"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/repository"
	pkgerrors "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/errors"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/metrics"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/slugify"
)

var (
	ErrNotAllowedToRegister    = errors.New("Only HR and Company users can register employees.")
	ErrRegisterWithoutCompany  = errors.New("You must be associated with a company to register employees")
	ErrNotAllowedToEdit        = errors.New("Only HR and Company users can edit profiles.")
	ErrNotAllowedToViewMembers = errors.New("Only HR and Company users can view company members.")
	ErrNoCompany               = errors.New("User does not belong to any company.")
	ErrManagedByRequired       = errors.New("Managed by is required for Employee role")
	ErrManagesTeamRequired     = errors.New("Manages Team is required for Manager role")
	ErrInvalidManager          = errors.New("Managed by must be a manager of your company.")
	ErrEmployeeIDExists        = errors.New("An employee with that employee ID already exists.")
	ErrInvalidPhoneNumber      = errors.New("Enter a valid phone number.")
	ErrInvalidDate             = errors.New("Enter a valid date.")
	ErrCannotDeactivateSelf    = errors.New("You cannot deactivate your own account.")
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// AccountService members, profiles and company membership
type AccountService interface {
	SignupEmployee(ctx context.Context, caller Caller, req *dto.SignupEmployeeRequest) (*dto.SignupEmployeeResponse, error)
	ImportMembers(ctx context.Context, caller Caller, rows []ImportMemberRow) (*dto.ImportMembersResponse, error)
	GetProfile(ctx context.Context, caller Caller, slug string) (*dto.ProfileDetailResponse, error)
	UpdateOwnProfile(ctx context.Context, caller Caller, req *dto.UpdateOwnProfileRequest) (*dto.ProfileDetailResponse, error)
	FullUpdateProfile(ctx context.Context, caller Caller, slug string, req *dto.FullUpdateProfileRequest) (*dto.ProfileDetailResponse, error)
	CompanyMembers(ctx context.Context, caller Caller) (*dto.MembersResponse, error)
}

type accountService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAccountService creates an AccountService
func NewAccountService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AccountService {
	return &accountService{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// memberInput is a validated new member, from the sign-up form or an import row.
type memberInput struct {
	FirstName   string
	LastName    string
	Email       string
	EmployeeID  string
	Role        string
	DateOfHire  model.Date
	DaysOffLeft int
	ManagedByID *string
	ManagesTeam *string
}

func (m *memberInput) fullName() string { return m.FirstName + " " + m.LastName }

// ── sign up ──

func (s *accountService) SignupEmployee(ctx context.Context, caller Caller, req *dto.SignupEmployeeRequest) (*dto.SignupEmployeeResponse, error) {
	company, err := s.registeringCompany(ctx, caller)
	if err != nil {
		return nil, err
	}

	hire := model.NewDate(s.now())
	if req.DateOfHire != "" {
		if hire, err = model.ParseDate(req.DateOfHire); err != nil {
			return nil, ErrInvalidDate
		}
	}

	in := &memberInput{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Email:       normalizeEmail(req.Email),
		EmployeeID:  strings.TrimSpace(req.EmployeeID),
		Role:        req.Role,
		DateOfHire:  hire,
		DaysOffLeft: req.DaysOffLeft,
		ManagedByID: nonEmpty(req.ManagedBy),
		ManagesTeam: nonEmpty(req.ManagesTeam),
	}

	var (
		profile  *model.Profile
		password string
	)
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		manager, err := s.checkMember(ctx, tx, company.CompanyID, in)
		if err != nil {
			return err
		}
		profile, password, err = s.createMember(ctx, tx, caller, company, in)
		if err != nil {
			return err
		}
		profile.ManagedBy = manager
		return nil
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("sign up member failed", zap.String("email", in.Email), zap.Error(err))
		}
		return nil, err
	}

	s.sendWelcome(profile)
	metrics.ObserveMemberCreated(in.Role, "signup")

	return &dto.SignupEmployeeResponse{
		Member:       toProfileResponse(profile),
		TempPassword: password,
	}, nil
}

// registeringCompany checks the caller may add members and loads their company.
func (s *accountService) registeringCompany(ctx context.Context, caller Caller) (*model.Company, error) {
	if !policy.CanManageMembers(caller.UserType) {
		return nil, ErrNotAllowedToRegister
	}
	if caller.CompanyID == "" {
		return nil, ErrRegisterWithoutCompany
	}
	company, err := s.repo.Company.GetByID(ctx, caller.CompanyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterWithoutCompany
		}
		return nil, err
	}
	return company, nil
}

// checkMember applies the role rules and uniqueness checks, returning the
// resolved manager when one is set.
func (s *accountService) checkMember(ctx context.Context, repo *repository.Repository, companyID string, in *memberInput) (*model.Profile, error) {
	switch in.Role {
	case model.UserTypeEmployee:
		if in.ManagedByID == nil {
			return nil, ErrManagedByRequired
		}
	case model.UserTypeManager:
		if in.ManagesTeam == nil {
			return nil, ErrManagesTeamRequired
		}
	}
	if in.Role != model.UserTypeManager {
		in.ManagesTeam = nil
	}

	exists, err := repo.User.ExistsByEmail(ctx, in.Email, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	if _, err := repo.Profile.GetByEmployeeID(ctx, companyID, in.EmployeeID); err == nil {
		return nil, ErrEmployeeIDExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if in.ManagedByID == nil {
		return nil, nil
	}
	return s.managerOf(ctx, repo, companyID, *in.ManagedByID)
}

func (s *accountService) managerOf(ctx context.Context, repo *repository.Repository, companyID, profileID string) (*model.Profile, error) {
	manager, err := repo.Profile.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidManager
		}
		return nil, err
	}
	if manager.CompanyID != companyID || !manager.IsManager() {
		return nil, ErrInvalidManager
	}
	return manager, nil
}

// createMember inserts the user and profile of a checked member.
func (s *accountService) createMember(ctx context.Context, repo *repository.Repository, caller Caller, company *model.Company, in *memberInput) (*model.Profile, string, error) {
	password, err := generateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, "", fmt.Errorf("generate password: %w", err)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	by := caller.UserID
	user := &model.User{
		Email:              in.Email,
		PasswordHash:       hash,
		UserType:           in.Role,
		IsActive:           true,
		DateJoined:         s.now(),
		MustChangePassword: true,
	}
	user.CreatedBy = &by
	if err := repo.User.Create(ctx, user); err != nil {
		return nil, "", err
	}

	slug, err := uniqueProfileSlug(ctx, repo, company.CompanyName, in)
	if err != nil {
		return nil, "", err
	}

	profile := &model.Profile{
		UserID:      user.UserID,
		CompanyID:   company.CompanyID,
		Role:        in.Role,
		Slug:        slug,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		EmployeeID:  in.EmployeeID,
		ManagedByID: in.ManagedByID,
		DateOfHire:  in.DateOfHire,
		DaysOffLeft: in.DaysOffLeft,
		ManagesTeam: in.ManagesTeam,
	}
	profile.CreatedBy = &by
	if err := repo.Profile.Create(ctx, profile); err != nil {
		return nil, "", err
	}
	profile.User = user
	return profile, password, nil
}

func uniqueProfileSlug(ctx context.Context, repo *repository.Repository, companyName string, in *memberInput) (string, error) {
	base := slugify.Profile(companyName, in.Role, in.fullName(), in.EmployeeID)
	slug := base
	for i := 0; i < maxSlugAttempts; i++ {
		taken, err := repo.Profile.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = slugify.ProfileWithSuffix(companyName, in.Role, in.fullName(), in.EmployeeID, 5)
	}
	return "", fmt.Errorf("no free slug for profile %q", base)
}

// sendWelcome stands in for the welcome e-mail with the password reset link.
func (s *accountService) sendWelcome(p *model.Profile) {
	email := ""
	if p.User != nil {
		email = p.User.Email
	}
	s.logger.Info("welcome email",
		zap.String("to", email),
		zap.String("profile_slug", p.Slug),
		zap.String("reset_url", strings.TrimRight(s.cfg.Server.BaseURL, "/")+"/password-reset"),
	)
}

// ── profiles ──

// account is a user with the company or profile it owns.
type account struct {
	user      *model.User
	profile   *model.Profile
	company   *model.Company
	companyID string
}

// bySlug resolves a profile or company slug.
func (s *accountService) bySlug(ctx context.Context, slug string) (*account, error) {
	profile, err := s.repo.Profile.GetBySlug(ctx, slug)
	if err == nil {
		user := profile.User
		if user == nil {
			if user, err = s.repo.User.GetByID(ctx, profile.UserID); err != nil {
				return nil, notFoundAs(err, ErrUserNotFound)
			}
		}
		profile.User = user
		return &account{user: user, profile: profile, companyID: profile.CompanyID}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	company, err := s.repo.Company.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	user, err := s.repo.User.GetByID(ctx, company.UserID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return &account{user: user, company: company, companyID: company.CompanyID}, nil
}

// byUser loads the account of a user id.
func (s *accountService) byUser(ctx context.Context, userID string) (*account, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	acc := &account{user: user}
	if user.UserType == model.UserTypeCompany {
		company, err := s.repo.Company.GetByUserID(ctx, userID)
		if err != nil {
			return nil, notFoundAs(err, ErrNoCompany)
		}
		acc.company = company
		acc.companyID = company.CompanyID
		return acc, nil
	}
	profile, err := s.repo.Profile.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	profile.User = user
	acc.profile = profile
	acc.companyID = profile.CompanyID
	return acc, nil
}

func (s *accountService) GetProfile(ctx context.Context, caller Caller, slug string) (*dto.ProfileDetailResponse, error) {
	acc, err := s.bySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if acc.companyID != caller.CompanyID {
		return nil, ErrUserNotFound
	}
	return s.detail(ctx, acc)
}

func (s *accountService) UpdateOwnProfile(ctx context.Context, caller Caller, req *dto.UpdateOwnProfileRequest) (*dto.ProfileDetailResponse, error) {
	acc, err := s.byUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	by := caller.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if req.Email != nil {
			if err := s.changeEmail(ctx, tx, acc.user, *req.Email, by); err != nil {
				return err
			}
		}

		if acc.company != nil {
			if req.CompanyName == nil {
				return nil
			}
			acc.company.CompanyName = strings.TrimSpace(*req.CompanyName)
			acc.company.UpdatedBy = &by
			return tx.Company.Update(ctx, acc.company)
		}

		p := acc.profile
		changed, err := applyContactFields(p, req.PhoneNumber, req.Address, req.DateOfBirth, req.ProfilePicture, s.now())
		if err != nil || !changed {
			return err
		}
		p.UpdatedBy = &by
		return tx.Profile.Update(ctx, p)
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("update own profile failed", zap.String("user_id", caller.UserID), zap.Error(err))
		}
		return nil, err
	}
	return s.detail(ctx, acc)
}

func (s *accountService) FullUpdateProfile(ctx context.Context, caller Caller, slug string, req *dto.FullUpdateProfileRequest) (*dto.ProfileDetailResponse, error) {
	if !policy.CanManageMembers(caller.UserType) {
		return nil, ErrNotAllowedToEdit
	}
	acc, err := s.bySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if acc.companyID == "" || acc.companyID != caller.CompanyID {
		return nil, ErrUserNotFound
	}
	if req.Version != 0 && req.Version != acc.version() {
		return nil, pkgerrors.ErrOptimisticLock
	}
	by := caller.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		userChanged := false
		if req.Email != nil && normalizeEmail(*req.Email) != acc.user.Email {
			if err := s.checkEmailFree(ctx, tx, acc.user.UserID, *req.Email); err != nil {
				return err
			}
			acc.user.Email = normalizeEmail(*req.Email)
			userChanged = true
		}
		if req.IsActive != nil && *req.IsActive != acc.user.IsActive {
			if !*req.IsActive && acc.user.UserID == caller.UserID {
				return ErrCannotDeactivateSelf
			}
			acc.user.IsActive = *req.IsActive
			userChanged = true
		}
		if userChanged {
			acc.user.UpdatedBy = &by
			if err := tx.User.Update(ctx, acc.user); err != nil {
				return err
			}
		}

		if acc.company != nil {
			return s.applyCompanyFields(ctx, tx, acc.company, req, by)
		}
		return s.applyProfileFields(ctx, tx, acc.profile, req, by)
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("full update profile failed", zap.String("slug", slug), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("profile updated",
		zap.String("slug", slug),
		zap.String("by", caller.UserID),
	)
	return s.detail(ctx, acc)
}

func (a *account) version() int {
	if a.company != nil {
		return a.company.Version
	}
	if a.profile != nil {
		return a.profile.Version
	}
	return a.user.Version
}

func (s *accountService) checkEmailFree(ctx context.Context, repo *repository.Repository, userID, email string) error {
	exists, err := repo.User.ExistsByEmail(ctx, normalizeEmail(email), userID)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailExists
	}
	return nil
}

func (s *accountService) changeEmail(ctx context.Context, repo *repository.Repository, user *model.User, email, by string) error {
	email = normalizeEmail(email)
	if email == user.Email {
		return nil
	}
	if err := s.checkEmailFree(ctx, repo, user.UserID, email); err != nil {
		return err
	}
	user.Email = email
	user.UpdatedBy = &by
	return repo.User.Update(ctx, user)
}

func (s *accountService) applyCompanyFields(ctx context.Context, repo *repository.Repository, c *model.Company, req *dto.FullUpdateProfileRequest, by string) error {
	changed := false
	if req.CompanyName != nil {
		c.CompanyName = strings.TrimSpace(*req.CompanyName)
		changed = true
	}
	if req.DaysOffPerYear != nil {
		c.DaysOffPerYear = *req.DaysOffPerYear
		changed = true
	}
	if req.TransferableDaysOff != nil {
		c.TransferableDaysOff = *req.TransferableDaysOff
		changed = true
	}
	if !changed {
		return nil
	}
	c.UpdatedBy = &by
	return repo.Company.Update(ctx, c)
}

func (s *accountService) applyProfileFields(ctx context.Context, repo *repository.Repository, p *model.Profile, req *dto.FullUpdateProfileRequest, by string) error {
	changed, err := applyContactFields(p, req.PhoneNumber, req.Address, req.DateOfBirth, req.ProfilePicture, s.now())
	if err != nil {
		return err
	}

	if req.FirstName != nil {
		p.FirstName = strings.TrimSpace(*req.FirstName)
		changed = true
	}
	if req.LastName != nil {
		p.LastName = strings.TrimSpace(*req.LastName)
		changed = true
	}
	if req.EmployeeID != nil && strings.TrimSpace(*req.EmployeeID) != p.EmployeeID {
		empID := strings.TrimSpace(*req.EmployeeID)
		other, err := repo.Profile.GetByEmployeeID(ctx, p.CompanyID, empID)
		if err == nil && other.ProfileID != p.ProfileID {
			return ErrEmployeeIDExists
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		p.EmployeeID = empID
		changed = true
	}
	if req.ManagedBy != nil {
		if *req.ManagedBy == "" {
			p.ManagedByID = nil
			p.ManagedBy = nil
		} else {
			if *req.ManagedBy == p.ProfileID {
				return ErrInvalidManager
			}
			manager, err := s.managerOf(ctx, repo, p.CompanyID, *req.ManagedBy)
			if err != nil {
				return err
			}
			id := manager.ProfileID
			p.ManagedByID = &id
			p.ManagedBy = manager
		}
		changed = true
	}
	if p.Role == model.UserTypeEmployee && p.ManagedByID == nil {
		return ErrManagedByRequired
	}
	if req.DateOfHire != nil {
		d, err := model.ParseDate(*req.DateOfHire)
		if err != nil {
			return ErrInvalidDate
		}
		p.DateOfHire = d
		changed = true
	}
	if req.DaysOffLeft != nil {
		p.DaysOffLeft = *req.DaysOffLeft
		changed = true
	}
	if req.ManagesTeam != nil && p.IsManager() {
		team := strings.TrimSpace(*req.ManagesTeam)
		if team == "" {
			return ErrManagesTeamRequired
		}
		p.ManagesTeam = &team
		changed = true
	}

	if !changed {
		return nil
	}
	p.UpdatedBy = &by
	return repo.Profile.Update(ctx, p)
}

// applyContactFields sets the fields every profile user may edit.
func applyContactFields(p *model.Profile, phone, address, dateOfBirth, picture *string, now time.Time) (bool, error) {
	changed := false
	if phone != nil {
		v := strings.TrimSpace(*phone)
		if v == "" {
			p.PhoneNumber = nil
		} else {
			if !phonePattern.MatchString(v) {
				return false, ErrInvalidPhoneNumber
			}
			p.PhoneNumber = &v
		}
		changed = true
	}
	if address != nil {
		p.Address = nonEmpty(address)
		changed = true
	}
	if dateOfBirth != nil {
		if *dateOfBirth == "" {
			p.DateOfBirth = nil
		} else {
			d, err := model.ParseDate(*dateOfBirth)
			if err != nil || d.After(now) {
				return false, ErrInvalidDate
			}
			p.DateOfBirth = &d
		}
		changed = true
	}
	if picture != nil {
		p.ProfilePicture = nonEmpty(picture)
		changed = true
	}
	return changed, nil
}

// detail builds the profile page of acc with its company members.
func (s *accountService) detail(ctx context.Context, acc *account) (*dto.ProfileDetailResponse, error) {
	resp := &dto.ProfileDetailResponse{
		UserID:   acc.user.UserID,
		Email:    acc.user.Email,
		UserType: acc.user.UserType,
		IsActive: acc.user.IsActive,
	}

	company := acc.company
	if acc.profile != nil {
		acc.profile.User = acc.user
		pr := toProfileResponse(acc.profile)
		resp.Profile = &pr
		resp.Slug = acc.profile.Slug
	}
	if company != nil {
		cr := toCompanyResponse(company, acc.user.Email)
		resp.Company = &cr
		resp.Slug = company.Slug
	}

	if acc.companyID == "" {
		return resp, nil
	}
	members, err := s.members(ctx, acc.companyID)
	if err != nil {
		return nil, err
	}
	resp.Members = members
	return resp, nil
}

// ── company members ──

func (s *accountService) CompanyMembers(ctx context.Context, caller Caller) (*dto.MembersResponse, error) {
	if !policy.Has(caller.UserType, policy.ViewUser) {
		return nil, ErrNotAllowedToViewMembers
	}
	if caller.CompanyID == "" {
		return nil, ErrNoCompany
	}
	return s.members(ctx, caller.CompanyID)
}

func (s *accountService) members(ctx context.Context, companyID string) (*dto.MembersResponse, error) {
	company, err := s.repo.Company.GetByID(ctx, companyID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoCompany)
	}
	owner, err := s.repo.User.GetByID(ctx, company.UserID)
	if err != nil {
		return nil, notFoundAs(err, ErrNoCompany)
	}
	profiles, err := s.repo.Profile.ListByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("list company members failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, err
	}
	return groupMembers(toCompanyResponse(company, owner.Email), profiles), nil
}

// ── helpers ──

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// businessErrors are reported to the caller and not logged as failures.
var businessErrors = []error{
	ErrEmailExists, ErrUserNotFound, ErrNoCompany,
	ErrManagedByRequired, ErrManagesTeamRequired, ErrInvalidManager,
	ErrEmployeeIDExists, ErrInvalidPhoneNumber, ErrInvalidDate,
	ErrCannotDeactivateSelf, pkgerrors.ErrOptimisticLock,
}

func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
