package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
)

// ProfileRepository HR / Manager / Employee profile data access
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	GetBySlug(ctx context.Context, slug string) (*model.Profile, error)
	GetByEmployeeID(ctx context.Context, companyID, employeeID string) (*model.Profile, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListByCompany(ctx context.Context, companyID string) ([]model.Profile, error)
	ListByIDs(ctx context.Context, companyID string, ids []string) ([]model.Profile, error)
	ListByTeam(ctx context.Context, teamID string) ([]model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
	SetTeam(ctx context.Context, teamID string, profileIDs []string) error
	ClearTeam(ctx context.Context, teamID string) error
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo creates a ProfileRepository
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Omit("User", "Company", "ManagedBy").Create(profile).Error
}

func (r *profileRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("ManagedBy")
}

func (r *profileRepo) first(ctx context.Context, query string, args ...interface{}) (*model.Profile, error) {
	var profile model.Profile
	if err := r.preloaded(ctx).Where(query, args...).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	return r.first(ctx, "profile_id = ?", id)
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *profileRepo) GetBySlug(ctx context.Context, slug string) (*model.Profile, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *profileRepo) GetByEmployeeID(ctx context.Context, companyID, employeeID string) (*model.Profile, error) {
	return r.first(ctx, "company_id = ? AND employee_id = ?", companyID, employeeID)
}

func (r *profileRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Profile{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *profileRepo) ListByCompany(ctx context.Context, companyID string) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.preloaded(ctx).
		Where("company_id = ?", companyID).
		Order("last_name, first_name").
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) ListByIDs(ctx context.Context, companyID string, ids []string) ([]model.Profile, error) {
	var profiles []model.Profile
	if len(ids) == 0 {
		return profiles, nil
	}
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND profile_id IN ?", companyID, ids).
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) ListByTeam(ctx context.Context, teamID string) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("last_name, first_name").
		Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) Update(ctx context.Context, profile *model.Profile) error {
	err := updateVersioned(ctx, r.db, &model.Profile{}, "profile_id", profile.ProfileID, profile.Version, map[string]interface{}{
		"first_name":      profile.FirstName,
		"last_name":       profile.LastName,
		"employee_id":     profile.EmployeeID,
		"managed_by_id":   profile.ManagedByID,
		"date_of_hire":    profile.DateOfHire,
		"days_off_left":   profile.DaysOffLeft,
		"phone_number":    profile.PhoneNumber,
		"address":         profile.Address,
		"date_of_birth":   profile.DateOfBirth,
		"profile_picture": profile.ProfilePicture,
		"manages_team":    profile.ManagesTeam,
		"updated_by":      profile.UpdatedBy,
	})
	if err != nil {
		return err
	}
	profile.Version++
	return nil
}

// SetTeam replaces the membership of teamID with profileIDs.
func (r *profileRepo) SetTeam(ctx context.Context, teamID string, profileIDs []string) error {
	if err := r.ClearTeam(ctx, teamID); err != nil {
		return err
	}
	if len(profileIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("profile_id IN ?", profileIDs).
		UpdateColumn("team_id", teamID).Error
}

func (r *profileRepo) ClearTeam(ctx context.Context, teamID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("team_id = ?", teamID).
		UpdateColumn("team_id", nil).Error
}
