package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/errors"
)

// Repository groups every data access interface.
type Repository struct {
	db *gorm.DB

	User            UserRepository
	Company         CompanyRepository
	Profile         ProfileRepository
	ShiftPattern    ShiftPatternRepository
	ShiftAssignment ShiftAssignmentRepository
	Team            TeamRepository
}

// NewRepository creates the repository aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:              db,
		User:            NewUserRepo(db),
		Company:         NewCompanyRepo(db),
		Profile:         NewProfileRepo(db),
		ShiftPattern:    NewShiftPatternRepo(db),
		ShiftAssignment: NewShiftAssignmentRepo(db),
		Team:            NewTeamRepo(db),
	}
}

// BeginTx starts a transaction. A repository built without a database
// (unit tests with mock repositories) returns a nil transaction.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns a repository bound to tx; a nil tx returns r itself.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// Transaction runs fn in a transaction, committing when it returns nil.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// updateVersioned writes fields to the row whose key column equals id only
// if its version is still version, then bumps the version.
func updateVersioned(ctx context.Context, db *gorm.DB, value interface{}, keyColumn, id string, version int, fields map[string]interface{}) error {
	fields["version"] = version + 1
	result := db.WithContext(ctx).
		Model(value).
		Where(keyColumn+" = ? AND version = ?", id, version).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
