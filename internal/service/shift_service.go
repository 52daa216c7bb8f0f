package service

import (
	"bytes"
	"context"
	"errors"
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
)

// previews longer than two years are refused
const maxPreviewDays = 731

var (
	ErrNotAllowed           = errors.New("You do not have permission to perform this action.")
	ErrPatternNotFound      = errors.New("Shift pattern not found.")
	ErrPatternNameExists    = errors.New("A shift pattern with that name already exists.")
	ErrInvalidDateRange     = errors.New("The start of the range must not be after its end.")
	ErrPreviewRangeTooLong  = errors.New("The preview range may span at most two years.")
	ErrExportGenerateFailed = errors.New("Could not build the export file.")
)

// ShiftService shift patterns and their generated assignments
type ShiftService interface {
	CreatePattern(ctx context.Context, caller Caller, req *dto.CreatePatternRequest) (*dto.PatternResponse, error)
	ListPatterns(ctx context.Context, caller Caller, req *dto.PatternListRequest) ([]dto.PatternResponse, int64, error)
	GetPattern(ctx context.Context, caller Caller, id string) (*dto.PatternResponse, error)
	UpdatePattern(ctx context.Context, caller Caller, id string, req *dto.UpdatePatternRequest) (*dto.PatternResponse, error)
	DeletePattern(ctx context.Context, caller Caller, id string) error

	// Generate fills the pattern's assignments up to the horizon.
	Generate(ctx context.Context, caller Caller, id string) (*dto.GenerateResponse, error)
	// GenerateAll runs the generator without tenant scoping, for every
	// pattern or only patternID when it is set.
	GenerateAll(ctx context.Context, patternID string) ([]dto.GenerateResponse, error)

	ListAssignments(ctx context.Context, caller Caller, id string, q *dto.AssignmentRangeQuery) ([]dto.AssignmentResponse, error)
	Preview(ctx context.Context, caller Caller, req *dto.PreviewRequest) ([]dto.AssignmentResponse, error)
	ExportAssignments(ctx context.Context, caller Caller, id string, q *dto.AssignmentRangeQuery) (*bytes.Buffer, string, error)
}

type shiftService struct {
	cfg    *config.ScheduleConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewShiftService creates a ShiftService
func NewShiftService(cfg *config.ScheduleConfig, repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{
		cfg:    cfg,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *shiftService) authorize(caller Caller, perm policy.Permission) error {
	if !policy.Has(caller.UserType, perm) {
		return ErrNotAllowed
	}
	if caller.CompanyID == "" {
		return ErrNoCompany
	}
	return nil
}

func (s *shiftService) load(ctx context.Context, companyID, id string) (*model.ShiftPattern, error) {
	pattern, err := s.repo.ShiftPattern.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("load shift pattern failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return pattern, nil
}

func (s *shiftService) horizonEnd() model.Date {
	return HorizonEnd(s.now(), s.cfg.HorizonYears)
}

// horizonFrom is the first day generated for pattern.
func (s *shiftService) horizonFrom(pattern *model.ShiftPattern) model.Date {
	if floor := HorizonStart(s.now()); pattern.StartDate.Before(floor.Time) {
		return floor
	}
	return pattern.StartDate
}

// ── CRUD ──

func (s *shiftService) CreatePattern(ctx context.Context, caller Caller, req *dto.CreatePatternRequest) (*dto.PatternResponse, error) {
	if err := s.authorize(caller, policy.AddShiftPattern); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	exists, err := s.repo.ShiftPattern.ExistsByName(ctx, caller.CompanyID, name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrPatternNameExists
	}

	start := model.NewDate(s.now())
	if req.StartDate != "" {
		if start, err = model.ParseDate(req.StartDate); err != nil {
			return nil, ErrInvalidDate
		}
	}
	rotation := req.RotationWeeks
	if rotation == 0 {
		rotation = model.MinRotationWeeks
	}

	blocks, err := BuildBlocks(req.Blocks)
	if err != nil {
		return nil, err
	}
	if err := ValidatePattern(start, blocks); err != nil {
		return nil, err
	}

	by := caller.UserID
	pattern := &model.ShiftPattern{
		CompanyID:     caller.CompanyID,
		Name:          name,
		Description:   req.Description,
		StartDate:     start,
		RotationWeeks: rotation,
		Blocks:        blocks,
	}
	pattern.CreatedBy = &by

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.ShiftPattern.Create(ctx, pattern); err != nil {
			return err
		}
		_, err := s.generate(ctx, tx, pattern)
		return err
	})
	if err != nil {
		// a concurrent create won the name
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPatternNameExists
		}
		s.logger.Error("create shift pattern failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("shift pattern created",
		zap.String("pattern_id", pattern.PatternID),
		zap.String("company_id", pattern.CompanyID),
		zap.Int("blocks", len(pattern.Blocks)),
	)
	resp := toPatternResponse(pattern)
	return &resp, nil
}

func (s *shiftService) ListPatterns(ctx context.Context, caller Caller, req *dto.PatternListRequest) ([]dto.PatternResponse, int64, error) {
	if err := s.authorize(caller, policy.ViewShiftPattern); err != nil {
		return nil, 0, err
	}
	patterns, total, err := s.repo.ShiftPattern.List(ctx, caller.CompanyID, strings.TrimSpace(req.Keyword), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list shift patterns failed", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.PatternResponse, 0, len(patterns))
	for i := range patterns {
		out = append(out, toPatternResponse(&patterns[i]))
	}
	return out, total, nil
}

func (s *shiftService) GetPattern(ctx context.Context, caller Caller, id string) (*dto.PatternResponse, error) {
	if err := s.authorize(caller, policy.ViewShiftPattern); err != nil {
		return nil, err
	}
	pattern, err := s.load(ctx, caller.CompanyID, id)
	if err != nil {
		return nil, err
	}
	resp := toPatternResponse(pattern)
	return &resp, nil
}

func (s *shiftService) UpdatePattern(ctx context.Context, caller Caller, id string, req *dto.UpdatePatternRequest) (*dto.PatternResponse, error) {
	if err := s.authorize(caller, policy.ChangeShiftPattern); err != nil {
		return nil, err
	}
	pattern, err := s.load(ctx, caller.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != pattern.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		exists, err := s.repo.ShiftPattern.ExistsByName(ctx, caller.CompanyID, name, pattern.PatternID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPatternNameExists
		}
		pattern.Name = name
	}
	if req.Description != nil {
		pattern.Description = *req.Description
	}
	startChanged := false
	if req.StartDate != nil {
		start, err := model.ParseDate(*req.StartDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		startChanged = !start.Equal(pattern.StartDate.Time)
		pattern.StartDate = start
	}
	if req.RotationWeeks != nil {
		pattern.RotationWeeks = *req.RotationWeeks
	}

	blocksChanged := req.Blocks != nil
	if blocksChanged {
		blocks, err := BuildBlocks(req.Blocks)
		if err != nil {
			return nil, err
		}
		pattern.Blocks = blocks
	}
	if err := ValidatePattern(pattern.StartDate, pattern.Blocks); err != nil {
		return nil, err
	}

	by := caller.UserID
	pattern.UpdatedBy = &by

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.ShiftPattern.Update(ctx, pattern); err != nil {
			return err
		}
		switch {
		case blocksChanged:
			if err := tx.ShiftPattern.ReplaceBlocks(ctx, pattern.PatternID, pattern.Blocks); err != nil {
				return err
			}
		case startChanged:
			if err := tx.ShiftAssignment.DeleteByPattern(ctx, pattern.PatternID); err != nil {
				return err
			}
		default:
			return nil
		}
		_, err := s.generate(ctx, tx, pattern)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPatternNameExists
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update shift pattern failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	resp := toPatternResponse(pattern)
	return &resp, nil
}

func (s *shiftService) DeletePattern(ctx context.Context, caller Caller, id string) error {
	if err := s.authorize(caller, policy.DeleteShiftPattern); err != nil {
		return err
	}
	pattern, err := s.load(ctx, caller.CompanyID, id)
	if err != nil {
		return err
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.ShiftPattern.Delete(ctx, pattern.PatternID, caller.UserID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPatternNotFound
		}
		s.logger.Error("delete shift pattern failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("shift pattern deleted", zap.String("pattern_id", id), zap.String("by", caller.UserID))
	return nil
}

// ── generation ──

func (s *shiftService) Generate(ctx context.Context, caller Caller, id string) (*dto.GenerateResponse, error) {
	if err := s.authorize(caller, policy.ChangeShiftPattern); err != nil {
		return nil, err
	}
	pattern, err := s.load(ctx, caller.CompanyID, id)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, s.repo, pattern)
}

func (s *shiftService) GenerateAll(ctx context.Context, patternID string) ([]dto.GenerateResponse, error) {
	var patterns []model.ShiftPattern
	if patternID != "" {
		pattern, err := s.load(ctx, "", patternID)
		if err != nil {
			return nil, err
		}
		patterns = []model.ShiftPattern{*pattern}
	} else {
		var err error
		if patterns, err = s.repo.ShiftPattern.ListAll(ctx); err != nil {
			return nil, err
		}
	}

	results := make([]dto.GenerateResponse, 0, len(patterns))
	for i := range patterns {
		res, err := s.generate(ctx, s.repo, &patterns[i])
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// generate expands pattern over the horizon, from its start date or 1 January
// of this year when that is later, and inserts the working days that are
// not stored yet. The cycle stays anchored at the start date.
func (s *shiftService) generate(ctx context.Context, repo *repository.Repository, pattern *model.ShiftPattern) (*dto.GenerateResponse, error) {
	started := s.now()
	from := s.horizonFrom(pattern)
	to := s.horizonEnd()
	resp := &dto.GenerateResponse{
		PatternID: pattern.PatternID,
		From:      from.String(),
		To:        to.String(),
	}

	occurrences, err := Expand(pattern.StartDate, pattern.Blocks, from, to)
	if err != nil {
		metrics.ObserveGeneration("error", 0, time.Since(started))
		return nil, err
	}
	resp.Expanded = len(occurrences)

	rows := make([]model.ShiftAssignment, 0, len(occurrences))
	for _, o := range occurrences {
		rows = append(rows, model.ShiftAssignment{ShiftBlockID: o.Block.BlockID, Date: o.Date})
	}

	inserted, err := repo.ShiftAssignment.BatchInsert(ctx, rows, s.cfg.BatchSize)
	if err != nil {
		metrics.ObserveGeneration("error", 0, time.Since(started))
		s.logger.Error("insert shift assignments failed", zap.String("pattern_id", pattern.PatternID), zap.Error(err))
		return nil, err
	}
	resp.Inserted = inserted
	metrics.ObserveGeneration("success", inserted, time.Since(started))

	s.logger.Info("shift assignments generated",
		zap.String("pattern_id", pattern.PatternID),
		zap.String("to", resp.To),
		zap.Int("expanded", resp.Expanded),
		zap.Int64("inserted", inserted),
	)
	return resp, nil
}

// ── reading ──

func (s *shiftService) ListAssignments(ctx context.Context, caller Caller, id string, q *dto.AssignmentRangeQuery) ([]dto.AssignmentResponse, error) {
	if err := s.authorize(caller, policy.ViewShiftPattern); err != nil {
		return nil, err
	}
	pattern, err := s.load(ctx, caller.CompanyID, id)
	if err != nil {
		return nil, err
	}
	_, rows, err := s.assignments(ctx, pattern, q)
	return rows, err
}

// assignments returns the stored assignments of pattern within the query
// window, which defaults to the generated horizon.
func (s *shiftService) assignments(ctx context.Context, pattern *model.ShiftPattern, q *dto.AssignmentRangeQuery) ([2]model.Date, []dto.AssignmentResponse, error) {
	from, to := s.horizonFrom(pattern), s.horizonEnd()
	var err error
	if q != nil && q.From != "" {
		if from, err = model.ParseDate(q.From); err != nil {
			return [2]model.Date{}, nil, ErrInvalidDate
		}
	}
	if q != nil && q.To != "" {
		if to, err = model.ParseDate(q.To); err != nil {
			return [2]model.Date{}, nil, ErrInvalidDate
		}
	}
	if from.After(to.Time) {
		return [2]model.Date{}, nil, ErrInvalidDateRange
	}

	stored, err := s.repo.ShiftAssignment.ListByPattern(ctx, pattern.PatternID, from, to)
	if err != nil {
		s.logger.Error("list shift assignments failed", zap.String("pattern_id", pattern.PatternID), zap.Error(err))
		return [2]model.Date{}, nil, err
	}
	out := make([]dto.AssignmentResponse, 0, len(stored))
	for i := range stored {
		out = append(out, toAssignmentResponse(stored[i].Date, stored[i].ShiftBlock))
	}
	return [2]model.Date{from, to}, out, nil
}

func (s *shiftService) Preview(ctx context.Context, caller Caller, req *dto.PreviewRequest) ([]dto.AssignmentResponse, error) {
	if err := s.authorize(caller, policy.ViewShiftPattern); err != nil {
		return nil, err
	}

	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	from, err := model.ParseDate(req.From)
	if err != nil {
		return nil, ErrInvalidDate
	}
	to, err := model.ParseDate(req.To)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if from.After(to.Time) {
		return nil, ErrInvalidDateRange
	}
	if daysBetween(from, to) > maxPreviewDays {
		return nil, ErrPreviewRangeTooLong
	}

	blocks, err := BuildBlocks(req.Blocks)
	if err != nil {
		return nil, err
	}
	if err := ValidatePattern(start, blocks); err != nil {
		return nil, err
	}

	occurrences, err := Expand(start, blocks, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AssignmentResponse, 0, len(occurrences))
	for _, o := range occurrences {
		out = append(out, toAssignmentResponse(o.Date, o.Block))
	}
	return out, nil
}
