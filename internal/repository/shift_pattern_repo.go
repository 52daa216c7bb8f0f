package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
)

// ShiftPatternRepository shift pattern and block data access
type ShiftPatternRepository interface {
	Create(ctx context.Context, pattern *model.ShiftPattern) error
	// GetByID loads the pattern with ordered blocks; an empty companyID skips tenant scoping.
	GetByID(ctx context.Context, companyID, id string) (*model.ShiftPattern, error)
	List(ctx context.Context, companyID, keyword string, offset, limit int) ([]model.ShiftPattern, int64, error)
	ListAll(ctx context.Context) ([]model.ShiftPattern, error)
	ExistsByName(ctx context.Context, companyID, name, excludeID string) (bool, error)
	Update(ctx context.Context, pattern *model.ShiftPattern) error
	ReplaceBlocks(ctx context.Context, patternID string, blocks []model.ShiftBlock) error
	Delete(ctx context.Context, id, deletedBy string) error
}

type shiftPatternRepo struct {
	db *gorm.DB
}

// NewShiftPatternRepo creates a ShiftPatternRepository
func NewShiftPatternRepo(db *gorm.DB) ShiftPatternRepository {
	return &shiftPatternRepo{db: db}
}

func orderedBlocks(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, created_at ASC")
}

func (r *shiftPatternRepo) Create(ctx context.Context, pattern *model.ShiftPattern) error {
	// blocks are inserted through the association
	return r.db.WithContext(ctx).Create(pattern).Error
}

func (r *shiftPatternRepo) GetByID(ctx context.Context, companyID, id string) (*model.ShiftPattern, error) {
	var pattern model.ShiftPattern
	q := r.db.WithContext(ctx).Preload("Blocks", orderedBlocks).Where("pattern_id = ?", id)
	if companyID != "" {
		q = q.Where("company_id = ?", companyID)
	}
	if err := q.First(&pattern).Error; err != nil {
		return nil, err
	}
	return &pattern, nil
}

func (r *shiftPatternRepo) List(ctx context.Context, companyID, keyword string, offset, limit int) ([]model.ShiftPattern, int64, error) {
	var patterns []model.ShiftPattern
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ShiftPattern{}).Where("company_id = ?", companyID)
	if keyword != "" {
		db = db.Where("LOWER(name) LIKE LOWER(?)", "%"+keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Blocks", orderedBlocks).
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&patterns).Error; err != nil {
		return nil, 0, err
	}

	return patterns, total, nil
}

func (r *shiftPatternRepo) ListAll(ctx context.Context) ([]model.ShiftPattern, error) {
	var patterns []model.ShiftPattern
	err := r.db.WithContext(ctx).
		Preload("Blocks", orderedBlocks).
		Order("company_id, name").
		Find(&patterns).Error
	return patterns, err
}

func (r *shiftPatternRepo) ExistsByName(ctx context.Context, companyID, name, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.ShiftPattern{}).
		Where("company_id = ? AND LOWER(name) = LOWER(?)", companyID, name)
	if excludeID != "" {
		q = q.Where("pattern_id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *shiftPatternRepo) Update(ctx context.Context, pattern *model.ShiftPattern) error {
	err := updateVersioned(ctx, r.db, &model.ShiftPattern{}, "pattern_id", pattern.PatternID, pattern.Version, map[string]interface{}{
		"name":           pattern.Name,
		"description":    pattern.Description,
		"start_date":     pattern.StartDate,
		"rotation_weeks": pattern.RotationWeeks,
		"updated_by":     pattern.UpdatedBy,
	})
	if err != nil {
		return err
	}
	pattern.Version++
	return nil
}

// ReplaceBlocks drops the pattern's blocks with their assignments and inserts blocks.
func (r *shiftPatternRepo) ReplaceBlocks(ctx context.Context, patternID string, blocks []model.ShiftBlock) error {
	db := r.db.WithContext(ctx)
	if err := deleteAssignmentsOfPattern(db, patternID); err != nil {
		return err
	}
	if err := db.Where("pattern_id = ?", patternID).Delete(&model.ShiftBlock{}).Error; err != nil {
		return err
	}
	if len(blocks) == 0 {
		return nil
	}
	for i := range blocks {
		blocks[i].PatternID = patternID
	}
	return db.Create(&blocks).Error
}

// Delete soft-deletes the pattern, removes its blocks and assignments and
// detaches the teams that followed it.
func (r *shiftPatternRepo) Delete(ctx context.Context, id, deletedBy string) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Team{}).Where("shift_pattern_id = ?", id).
		UpdateColumn("shift_pattern_id", nil).Error; err != nil {
		return err
	}
	if err := deleteAssignmentsOfPattern(db, id); err != nil {
		return err
	}
	if err := db.Where("pattern_id = ?", id).Delete(&model.ShiftBlock{}).Error; err != nil {
		return err
	}
	result := db.Model(&model.ShiftPattern{}).
		Where("pattern_id = ?", id).
		Updates(map[string]interface{}{
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

func deleteAssignmentsOfPattern(db *gorm.DB, patternID string) error {
	blockIDs := db.Model(&model.ShiftBlock{}).Select("block_id").Where("pattern_id = ?", patternID)
	return db.Where("shift_block_id IN (?)", blockIDs).Delete(&model.ShiftAssignment{}).Error
}
