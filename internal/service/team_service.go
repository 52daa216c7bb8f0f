package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/policy"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/repository"
	pkgerrors "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/errors"
)

var (
	ErrTeamNotFound       = errors.New("Team not found.")
	ErrInvalidTeamManager = errors.New("The team manager must be a manager of your company.")
	ErrManagerHasTeam     = errors.New("This manager already leads another team.")
	ErrInvalidTeamMember  = errors.New("Team members must be employees or HR of your company.")
)

// TeamService teams of a company
type TeamService interface {
	CreateTeam(ctx context.Context, caller Caller, req *dto.CreateTeamRequest) (*dto.TeamResponse, error)
	ListTeams(ctx context.Context, caller Caller) ([]dto.TeamResponse, error)
	GetTeam(ctx context.Context, caller Caller, id string) (*dto.TeamResponse, error)
	UpdateTeam(ctx context.Context, caller Caller, id string, req *dto.UpdateTeamRequest) (*dto.TeamResponse, error)
	DeleteTeam(ctx context.Context, caller Caller, id string) error
	SetMembers(ctx context.Context, caller Caller, id string, req *dto.SetTeamMembersRequest) (*dto.TeamResponse, error)
}

type teamService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeamService creates a TeamService
func NewTeamService(repo *repository.Repository, logger *zap.Logger) TeamService {
	return &teamService{repo: repo, logger: logger}
}

func (s *teamService) authorize(caller Caller, perm policy.Permission) error {
	if !policy.Has(caller.UserType, perm) {
		return ErrNotAllowed
	}
	if caller.CompanyID == "" {
		return ErrNoCompany
	}
	return nil
}

func (s *teamService) load(ctx context.Context, companyID, id string) (*model.Team, error) {
	team, err := s.repo.Team.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("load team failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return team, nil
}

func (s *teamService) respond(ctx context.Context, companyID, id string) (*dto.TeamResponse, error) {
	team, err := s.load(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := toTeamResponse(team)
	return &resp, nil
}

// checkManager verifies managerID is a free manager of the company.
func (s *teamService) checkManager(ctx context.Context, companyID, managerID, teamID string) error {
	manager, err := s.repo.Profile.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidTeamManager
		}
		return err
	}
	if manager.CompanyID != companyID || !manager.IsManager() {
		return ErrInvalidTeamManager
	}

	led, err := s.repo.Team.GetByManager(ctx, managerID)
	if err == nil && led.TeamID != teamID {
		return ErrManagerHasTeam
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (s *teamService) checkPattern(ctx context.Context, companyID, patternID string) error {
	if _, err := s.repo.ShiftPattern.GetByID(ctx, companyID, patternID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPatternNotFound
		}
		return err
	}
	return nil
}

func (s *teamService) CreateTeam(ctx context.Context, caller Caller, req *dto.CreateTeamRequest) (*dto.TeamResponse, error) {
	if err := s.authorize(caller, policy.AddTeam); err != nil {
		return nil, err
	}

	team := &model.Team{
		CompanyID:      caller.CompanyID,
		Name:           strings.TrimSpace(req.Name),
		ManagerID:      nonEmpty(req.ManagerID),
		ShiftPatternID: nonEmpty(req.ShiftPatternID),
	}
	if team.ManagerID != nil {
		if err := s.checkManager(ctx, caller.CompanyID, *team.ManagerID, ""); err != nil {
			return nil, err
		}
	}
	if team.ShiftPatternID != nil {
		if err := s.checkPattern(ctx, caller.CompanyID, *team.ShiftPatternID); err != nil {
			return nil, err
		}
	}

	by := caller.UserID
	team.CreatedBy = &by
	if err := s.repo.Team.Create(ctx, team); err != nil {
		s.logger.Error("create team failed", zap.String("name", team.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("team created", zap.String("team_id", team.TeamID), zap.String("company_id", team.CompanyID))
	return s.respond(ctx, caller.CompanyID, team.TeamID)
}

func (s *teamService) ListTeams(ctx context.Context, caller Caller) ([]dto.TeamResponse, error) {
	if err := s.authorize(caller, policy.ViewTeam); err != nil {
		return nil, err
	}
	teams, err := s.repo.Team.List(ctx, caller.CompanyID)
	if err != nil {
		s.logger.Error("list teams failed", zap.Error(err))
		return nil, err
	}
	out := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		out = append(out, toTeamResponse(&teams[i]))
	}
	return out, nil
}

func (s *teamService) GetTeam(ctx context.Context, caller Caller, id string) (*dto.TeamResponse, error) {
	if err := s.authorize(caller, policy.ViewTeam); err != nil {
		return nil, err
	}
	return s.respond(ctx, caller.CompanyID, id)
}

func (s *teamService) UpdateTeam(ctx context.Context, caller Caller, id string, req *dto.UpdateTeamRequest) (*dto.TeamResponse, error) {
	if err := s.authorize(caller, policy.ChangeTeam); err != nil {
		return nil, err
	}
	team, err := s.load(ctx, caller.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != team.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Name != nil {
		team.Name = strings.TrimSpace(*req.Name)
	}
	if req.ManagerID != nil {
		team.ManagerID = nonEmpty(req.ManagerID)
		if team.ManagerID != nil {
			if err := s.checkManager(ctx, caller.CompanyID, *team.ManagerID, team.TeamID); err != nil {
				return nil, err
			}
		}
	}
	if req.ShiftPatternID != nil {
		team.ShiftPatternID = nonEmpty(req.ShiftPatternID)
		if team.ShiftPatternID != nil {
			if err := s.checkPattern(ctx, caller.CompanyID, *team.ShiftPatternID); err != nil {
				return nil, err
			}
		}
	}

	by := caller.UserID
	team.UpdatedBy = &by
	if err := s.repo.Team.Update(ctx, team); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("update team failed", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return s.respond(ctx, caller.CompanyID, id)
}

func (s *teamService) DeleteTeam(ctx context.Context, caller Caller, id string) error {
	if err := s.authorize(caller, policy.DeleteTeam); err != nil {
		return err
	}
	if _, err := s.load(ctx, caller.CompanyID, id); err != nil {
		return err
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Team.Delete(ctx, id, caller.UserID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		s.logger.Error("delete team failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("team deleted", zap.String("team_id", id), zap.String("by", caller.UserID))
	return nil
}

func (s *teamService) SetMembers(ctx context.Context, caller Caller, id string, req *dto.SetTeamMembersRequest) (*dto.TeamResponse, error) {
	if err := s.authorize(caller, policy.ChangeTeam); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, caller.CompanyID, id); err != nil {
		return nil, err
	}

	ids := dedupe(req.ProfileIDs)
	profiles, err := s.repo.Profile.ListByIDs(ctx, caller.CompanyID, ids)
	if err != nil {
		return nil, err
	}
	if len(profiles) != len(ids) {
		return nil, ErrInvalidTeamMember
	}
	for i := range profiles {
		if profiles[i].Role != model.UserTypeEmployee && profiles[i].Role != model.UserTypeHR {
			return nil, ErrInvalidTeamMember
		}
	}

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		return tx.Profile.SetTeam(ctx, id, ids)
	})
	if err != nil {
		s.logger.Error("set team members failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.respond(ctx, caller.CompanyID, id)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
