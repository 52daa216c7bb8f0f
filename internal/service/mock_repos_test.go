package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/repository"
	pkgerrors "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/errors"
)

// mockStore is the in-memory state shared by the mock repositories, so
// lookups can attach related rows the way GORM preloads do.
type mockStore struct {
	seq         int
	users       map[string]*model.User
	companies   map[string]*model.Company
	profiles    map[string]*model.Profile
	patterns    map[string]*model.ShiftPattern
	assignments map[string]model.ShiftAssignment // key: block id + date
	teams       map[string]*model.Team
}

func newMockStore() *mockStore {
	return &mockStore{
		users:       make(map[string]*model.User),
		companies:   make(map[string]*model.Company),
		profiles:    make(map[string]*model.Profile),
		patterns:    make(map[string]*model.ShiftPattern),
		assignments: make(map[string]model.ShiftAssignment),
		teams:       make(map[string]*model.Team),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// newMockRepository builds a repository aggregate without a database.
func newMockRepository() (*repository.Repository, *mockStore) {
	st := newMockStore()
	return &repository.Repository{
		User:            &mockUserRepo{st: st},
		Company:         &mockCompanyRepo{st: st},
		Profile:         &mockProfileRepo{st: st},
		ShiftPattern:    &mockShiftPatternRepo{st: st},
		ShiftAssignment: &mockShiftAssignmentRepo{st: st},
		Team:            &mockTeamRepo{st: st},
	}, st
}

// ── Mock UserRepository ──

type mockUserRepo struct{ st *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = m.st.nextID("user")
	}
	if user.Version == 0 {
		user.Version = 1
	}
	m.st.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) attach(u *model.User) *model.User {
	u.Company, u.Profile = nil, nil
	for _, c := range m.st.companies {
		if c.UserID == u.UserID {
			u.Company = c
		}
	}
	for _, p := range m.st.profiles {
		if p.UserID == u.UserID {
			u.Profile = p
		}
	}
	return u
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.st.users[id]; ok {
		return m.attach(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.st.users {
		if strings.EqualFold(u.Email, email) {
			return m.attach(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	for _, u := range m.st.users {
		if strings.EqualFold(u.Email, email) && u.UserID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	stored, ok := m.st.users[user.UserID]
	if !ok || stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	m.st.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := m.st.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

// ── Mock CompanyRepository ──

type mockCompanyRepo struct{ st *mockStore }

func (m *mockCompanyRepo) Create(_ context.Context, company *model.Company) error {
	if company.CompanyID == "" {
		company.CompanyID = m.st.nextID("company")
	}
	if company.Version == 0 {
		company.Version = 1
	}
	m.st.companies[company.CompanyID] = company
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id string) (*model.Company, error) {
	if c, ok := m.st.companies[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) GetByUserID(_ context.Context, userID string) (*model.Company, error) {
	for _, c := range m.st.companies {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) GetBySlug(_ context.Context, slug string) (*model.Company, error) {
	for _, c := range m.st.companies {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := m.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (m *mockCompanyRepo) Update(_ context.Context, company *model.Company) error {
	stored, ok := m.st.companies[company.CompanyID]
	if !ok || stored.Version != company.Version {
		return pkgerrors.ErrOptimisticLock
	}
	company.Version++
	m.st.companies[company.CompanyID] = company
	return nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct{ st *mockStore }

func (m *mockProfileRepo) Create(_ context.Context, profile *model.Profile) error {
	if profile.ProfileID == "" {
		profile.ProfileID = m.st.nextID("profile")
	}
	if profile.Version == 0 {
		profile.Version = 1
	}
	m.st.profiles[profile.ProfileID] = profile
	return nil
}

func (m *mockProfileRepo) attach(p *model.Profile) *model.Profile {
	p.User = m.st.users[p.UserID]
	p.ManagedBy = nil
	if p.ManagedByID != nil {
		p.ManagedBy = m.st.profiles[*p.ManagedByID]
	}
	return p
}

func (m *mockProfileRepo) find(match func(p *model.Profile) bool) (*model.Profile, error) {
	for _, p := range m.st.profiles {
		if match(p) {
			return m.attach(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	return m.find(func(p *model.Profile) bool { return p.ProfileID == id })
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	return m.find(func(p *model.Profile) bool { return p.UserID == userID })
}

func (m *mockProfileRepo) GetBySlug(_ context.Context, slug string) (*model.Profile, error) {
	return m.find(func(p *model.Profile) bool { return p.Slug == slug })
}

func (m *mockProfileRepo) GetByEmployeeID(_ context.Context, companyID, employeeID string) (*model.Profile, error) {
	return m.find(func(p *model.Profile) bool { return p.CompanyID == companyID && p.EmployeeID == employeeID })
}

func (m *mockProfileRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := m.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (m *mockProfileRepo) list(match func(p *model.Profile) bool) []model.Profile {
	var out []model.Profile
	for _, p := range m.st.profiles {
		if match(p) {
			out = append(out, *m.attach(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out
}

func (m *mockProfileRepo) ListByCompany(_ context.Context, companyID string) ([]model.Profile, error) {
	return m.list(func(p *model.Profile) bool { return p.CompanyID == companyID }), nil
}

func (m *mockProfileRepo) ListByIDs(_ context.Context, companyID string, ids []string) ([]model.Profile, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.list(func(p *model.Profile) bool { return p.CompanyID == companyID && want[p.ProfileID] }), nil
}

func (m *mockProfileRepo) ListByTeam(_ context.Context, teamID string) ([]model.Profile, error) {
	return m.list(func(p *model.Profile) bool { return p.TeamID != nil && *p.TeamID == teamID }), nil
}

func (m *mockProfileRepo) Update(_ context.Context, profile *model.Profile) error {
	stored, ok := m.st.profiles[profile.ProfileID]
	if !ok || stored.Version != profile.Version {
		return pkgerrors.ErrOptimisticLock
	}
	profile.Version++
	m.st.profiles[profile.ProfileID] = profile
	return nil
}

func (m *mockProfileRepo) SetTeam(ctx context.Context, teamID string, profileIDs []string) error {
	_ = m.ClearTeam(ctx, teamID)
	for _, id := range profileIDs {
		if p, ok := m.st.profiles[id]; ok {
			t := teamID
			p.TeamID = &t
		}
	}
	return nil
}

func (m *mockProfileRepo) ClearTeam(_ context.Context, teamID string) error {
	for _, p := range m.st.profiles {
		if p.TeamID != nil && *p.TeamID == teamID {
			p.TeamID = nil
		}
	}
	return nil
}

// ── Mock ShiftPatternRepository ──

type mockShiftPatternRepo struct{ st *mockStore }

func (m *mockShiftPatternRepo) assignBlockIDs(patternID string, blocks []model.ShiftBlock) {
	for i := range blocks {
		if blocks[i].BlockID == "" {
			blocks[i].BlockID = m.st.nextID("block")
		}
		blocks[i].PatternID = patternID
	}
}

func clonePattern(p *model.ShiftPattern) *model.ShiftPattern {
	cp := *p
	cp.Blocks = append([]model.ShiftBlock(nil), p.Blocks...)
	sort.SliceStable(cp.Blocks, func(i, j int) bool { return cp.Blocks[i].Order < cp.Blocks[j].Order })
	return &cp
}

func (m *mockShiftPatternRepo) Create(_ context.Context, pattern *model.ShiftPattern) error {
	for _, p := range m.st.patterns {
		if p.CompanyID == pattern.CompanyID && p.Name == pattern.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if pattern.PatternID == "" {
		pattern.PatternID = m.st.nextID("pattern")
	}
	if pattern.Version == 0 {
		pattern.Version = 1
	}
	pattern.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.assignBlockIDs(pattern.PatternID, pattern.Blocks)
	m.st.patterns[pattern.PatternID] = clonePattern(pattern)
	return nil
}

func (m *mockShiftPatternRepo) GetByID(_ context.Context, companyID, id string) (*model.ShiftPattern, error) {
	p, ok := m.st.patterns[id]
	if !ok || (companyID != "" && p.CompanyID != companyID) {
		return nil, gorm.ErrRecordNotFound
	}
	return clonePattern(p), nil
}

func (m *mockShiftPatternRepo) List(_ context.Context, companyID, keyword string, offset, limit int) ([]model.ShiftPattern, int64, error) {
	var all []model.ShiftPattern
	for _, p := range m.st.patterns {
		if p.CompanyID != companyID {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(keyword)) {
			continue
		}
		all = append(all, *clonePattern(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.ShiftPattern{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockShiftPatternRepo) ListAll(_ context.Context) ([]model.ShiftPattern, error) {
	var all []model.ShiftPattern
	for _, p := range m.st.patterns {
		all = append(all, *clonePattern(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

// racingPatternRepo misses names taken after its check, the way a
// concurrent create does.
type racingPatternRepo struct{ *mockShiftPatternRepo }

func (racingPatternRepo) ExistsByName(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (m *mockShiftPatternRepo) ExistsByName(_ context.Context, companyID, name, excludeID string) (bool, error) {
	for _, p := range m.st.patterns {
		if p.CompanyID == companyID && strings.EqualFold(p.Name, name) && p.PatternID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockShiftPatternRepo) Update(_ context.Context, pattern *model.ShiftPattern) error {
	stored, ok := m.st.patterns[pattern.PatternID]
	if !ok || stored.Version != pattern.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Name = pattern.Name
	stored.Description = pattern.Description
	stored.StartDate = pattern.StartDate
	stored.RotationWeeks = pattern.RotationWeeks
	stored.Version++
	pattern.Version++
	return nil
}

func (m *mockShiftPatternRepo) ReplaceBlocks(_ context.Context, patternID string, blocks []model.ShiftBlock) error {
	stored, ok := m.st.patterns[patternID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.st.deleteAssignments(stored)
	m.assignBlockIDs(patternID, blocks)
	stored.Blocks = append([]model.ShiftBlock(nil), blocks...)
	return nil
}

func (m *mockShiftPatternRepo) Delete(_ context.Context, id, _ string) error {
	stored, ok := m.st.patterns[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, t := range m.st.teams {
		if t.ShiftPatternID != nil && *t.ShiftPatternID == id {
			t.ShiftPatternID = nil
		}
	}
	m.st.deleteAssignments(stored)
	delete(m.st.patterns, id)
	return nil
}

func (s *mockStore) deleteAssignments(p *model.ShiftPattern) {
	for i := range p.Blocks {
		for key, a := range s.assignments {
			if a.ShiftBlockID == p.Blocks[i].BlockID {
				delete(s.assignments, key)
			}
		}
	}
}

// ── Mock ShiftAssignmentRepository ──

type mockShiftAssignmentRepo struct {
	st           *mockStore
	batchSizes   []int
	insertCalled int
}

func assignmentKey(blockID string, d model.Date) string {
	return blockID + "|" + d.String()
}

func (m *mockShiftAssignmentRepo) BatchInsert(_ context.Context, rows []model.ShiftAssignment, batchSize int) (int64, error) {
	m.insertCalled++
	m.batchSizes = append(m.batchSizes, batchSize)
	var inserted int64
	for _, r := range rows {
		key := assignmentKey(r.ShiftBlockID, r.Date)
		if _, ok := m.st.assignments[key]; ok {
			continue
		}
		r.AssignmentID = m.st.nextID("assignment")
		m.st.assignments[key] = r
		inserted++
	}
	return inserted, nil
}

// blocksOf maps block id to block for one pattern.
func (m *mockShiftAssignmentRepo) blocksOf(patternID string) map[string]*model.ShiftBlock {
	out := make(map[string]*model.ShiftBlock)
	if p, ok := m.st.patterns[patternID]; ok {
		for i := range p.Blocks {
			out[p.Blocks[i].BlockID] = &p.Blocks[i]
		}
	}
	return out
}

func (m *mockShiftAssignmentRepo) ListByPattern(_ context.Context, patternID string, from, to model.Date) ([]model.ShiftAssignment, error) {
	blocks := m.blocksOf(patternID)
	var out []model.ShiftAssignment
	for _, a := range m.st.assignments {
		b, ok := blocks[a.ShiftBlockID]
		if !ok || a.Date.Before(from.Time) || a.Date.After(to.Time) {
			continue
		}
		block := *b
		a.ShiftBlock = &block
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date.Time)
		}
		return out[i].ShiftBlock.Order < out[j].ShiftBlock.Order
	})
	return out, nil
}

func (m *mockShiftAssignmentRepo) CountByPattern(_ context.Context, patternID string) (int64, error) {
	blocks := m.blocksOf(patternID)
	var n int64
	for _, a := range m.st.assignments {
		if _, ok := blocks[a.ShiftBlockID]; ok {
			n++
		}
	}
	return n, nil
}

func (m *mockShiftAssignmentRepo) DeleteByPattern(_ context.Context, patternID string) error {
	if p, ok := m.st.patterns[patternID]; ok {
		m.st.deleteAssignments(p)
	}
	return nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct{ st *mockStore }

func (m *mockTeamRepo) view(t *model.Team) *model.Team {
	cp := *t
	cp.Manager, cp.ShiftPattern, cp.Members = nil, nil, nil
	if t.ManagerID != nil {
		cp.Manager = m.st.profiles[*t.ManagerID]
	}
	if t.ShiftPatternID != nil {
		cp.ShiftPattern = m.st.patterns[*t.ShiftPatternID]
	}
	for _, p := range m.st.profiles {
		if p.TeamID != nil && *p.TeamID == t.TeamID {
			cp.Members = append(cp.Members, *p)
		}
	}
	sort.Slice(cp.Members, func(i, j int) bool { return cp.Members[i].LastName < cp.Members[j].LastName })
	return &cp
}

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	if team.TeamID == "" {
		team.TeamID = m.st.nextID("team")
	}
	if team.Version == 0 {
		team.Version = 1
	}
	stored := *team
	m.st.teams[team.TeamID] = &stored
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, companyID, id string) (*model.Team, error) {
	t, ok := m.st.teams[id]
	if !ok || t.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return m.view(t), nil
}

func (m *mockTeamRepo) GetByManager(_ context.Context, managerID string) (*model.Team, error) {
	for _, t := range m.st.teams {
		if t.ManagerID != nil && *t.ManagerID == managerID {
			return m.view(t), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) List(_ context.Context, companyID string) ([]model.Team, error) {
	var out []model.Team
	for _, t := range m.st.teams {
		if t.CompanyID == companyID {
			out = append(out, *m.view(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockTeamRepo) Update(_ context.Context, team *model.Team) error {
	stored, ok := m.st.teams[team.TeamID]
	if !ok || stored.Version != team.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Name = team.Name
	stored.ManagerID = team.ManagerID
	stored.ShiftPatternID = team.ShiftPatternID
	stored.Version++
	team.Version++
	return nil
}

func (m *mockTeamRepo) Delete(_ context.Context, id, _ string) error {
	if _, ok := m.st.teams[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, p := range m.st.profiles {
		if p.TeamID != nil && *p.TeamID == id {
			p.TeamID = nil
		}
	}
	delete(m.st.teams, id)
	return nil
}
