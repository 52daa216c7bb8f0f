package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
)

// CompanyRepository company data access
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	GetByID(ctx context.Context, id string) (*model.Company, error)
	GetByUserID(ctx context.Context, userID string) (*model.Company, error)
	GetBySlug(ctx context.Context, slug string) (*model.Company, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, company *model.Company) error
}

type companyRepo struct {
	db *gorm.DB
}

// NewCompanyRepo creates a CompanyRepository
func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Omit("Profiles").Create(company).Error
}

func (r *companyRepo) GetByID(ctx context.Context, id string) (*model.Company, error) {
	return r.first(ctx, "company_id = ?", id)
}

func (r *companyRepo) GetByUserID(ctx context.Context, userID string) (*model.Company, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *companyRepo) GetBySlug(ctx context.Context, slug string) (*model.Company, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *companyRepo) first(ctx context.Context, query string, arg interface{}) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).Where(query, arg).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Company{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *companyRepo) Update(ctx context.Context, company *model.Company) error {
	err := updateVersioned(ctx, r.db, &model.Company{}, "company_id", company.CompanyID, company.Version, map[string]interface{}{
		"company_name":          company.CompanyName,
		"days_off_per_year":     company.DaysOffPerYear,
		"transferable_days_off": company.TransferableDaysOff,
		"updated_by":            company.UpdatedBy,
	})
	if err != nil {
		return err
	}
	company.Version++
	return nil
}
