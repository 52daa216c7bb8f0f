package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
)

// TeamRepository team data access
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, companyID, id string) (*model.Team, error)
	GetByManager(ctx context.Context, managerID string) (*model.Team, error)
	List(ctx context.Context, companyID string) ([]model.Team, error)
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id, deletedBy string) error
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo creates a TeamRepository
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Omit("Manager", "ShiftPattern", "Members").Create(team).Error
}

func (r *teamRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Manager").
		Preload("ShiftPattern").
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("last_name, first_name") })
}

func (r *teamRepo) GetByID(ctx context.Context, companyID, id string) (*model.Team, error) {
	var team model.Team
	if err := r.preloaded(ctx).
		Where("team_id = ? AND company_id = ?", id, companyID).
		First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) GetByManager(ctx context.Context, managerID string) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).Where("manager_id = ?", managerID).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context, companyID string) ([]model.Team, error) {
	var teams []model.Team
	err := r.preloaded(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

func (r *teamRepo) Update(ctx context.Context, team *model.Team) error {
	err := updateVersioned(ctx, r.db, &model.Team{}, "team_id", team.TeamID, team.Version, map[string]interface{}{
		"name":             team.Name,
		"manager_id":       team.ManagerID,
		"shift_pattern_id": team.ShiftPatternID,
		"updated_by":       team.UpdatedBy,
	})
	if err != nil {
		return err
	}
	team.Version++
	return nil
}

// Delete soft-deletes the team, releases its manager and clears its members.
func (r *teamRepo) Delete(ctx context.Context, id, deletedBy string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Profile{}).Where("team_id = ?", id).
		UpdateColumn("team_id", nil).Error; err != nil {
		return err
	}
	result := db.Model(&model.Team{}).
		Where("team_id = ?", id).
		Updates(map[string]interface{}{
			"manager_id": nil,
			"deleted_at": time.Now(),
			"deleted_by": deletedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
