package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
)

// ShiftAssignmentRepository generated assignment data access
type ShiftAssignmentRepository interface {
	// BatchInsert inserts rows, skipping (block, date) pairs that already exist,
	// and returns how many rows were new.
	BatchInsert(ctx context.Context, rows []model.ShiftAssignment, batchSize int) (int64, error)
	ListByPattern(ctx context.Context, patternID string, from, to model.Date) ([]model.ShiftAssignment, error)
	CountByPattern(ctx context.Context, patternID string) (int64, error)
	DeleteByPattern(ctx context.Context, patternID string) error
}

type shiftAssignmentRepo struct {
	db *gorm.DB
}

// NewShiftAssignmentRepo creates a ShiftAssignmentRepository
func NewShiftAssignmentRepo(db *gorm.DB) ShiftAssignmentRepository {
	return &shiftAssignmentRepo{db: db}
}

func (r *shiftAssignmentRepo) BatchInsert(ctx context.Context, rows []model.ShiftAssignment, batchSize int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	result := r.db.WithContext(ctx).
		Omit("ShiftBlock").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shift_block_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		CreateInBatches(&rows, batchSize)
	return result.RowsAffected, result.Error
}

func (r *shiftAssignmentRepo) ListByPattern(ctx context.Context, patternID string, from, to model.Date) ([]model.ShiftAssignment, error) {
	var rows []model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Preload("ShiftBlock").
		Joins("JOIN shift_blocks ON shift_blocks.block_id = shift_assignments.shift_block_id").
		Where("shift_blocks.pattern_id = ?", patternID).
		Where("shift_assignments.date BETWEEN ? AND ?", from, to).
		Order("shift_assignments.date ASC, shift_blocks.sort_order ASC").
		Find(&rows).Error
	return rows, err
}

func (r *shiftAssignmentRepo) CountByPattern(ctx context.Context, patternID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ShiftAssignment{}).
		Joins("JOIN shift_blocks ON shift_blocks.block_id = shift_assignments.shift_block_id").
		Where("shift_blocks.pattern_id = ?", patternID).
		Count(&count).Error
	return count, err
}

func (r *shiftAssignmentRepo) DeleteByPattern(ctx context.Context, patternID string) error {
	return deleteAssignmentsOfPattern(r.db.WithContext(ctx), patternID)
}
