package repository_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/config"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/repository"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/database"
	pkgerrors "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/errors"
)

// ── helpers ──

func newTestRepo(t *testing.T) (*repository.Repository, *gorm.DB) {
	t.Helper()
	db, err := database.NewDB(&config.DatabaseConfig{Driver: database.DriverSQLite, Path: ":memory:"}, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db, database.DriverSQLite, zap.NewNop(), model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewRepository(db), db
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func seedCompany(t *testing.T, repo *repository.Repository, email, name string) *model.Company {
	t.Helper()
	ctx := context.Background()
	user := &model.User{Email: email, PasswordHash: "x", UserType: model.UserTypeCompany, IsActive: true}
	if err := repo.User.Create(ctx, user); err != nil {
		t.Fatalf("create company user: %v", err)
	}
	company := &model.Company{UserID: user.UserID, CompanyName: name, Slug: "company-" + name}
	if err := repo.Company.Create(ctx, company); err != nil {
		t.Fatalf("create company: %v", err)
	}
	return company
}

func seedProfile(t *testing.T, repo *repository.Repository, companyID, email, role, employeeID string) *model.Profile {
	t.Helper()
	ctx := context.Background()
	user := &model.User{Email: email, PasswordHash: "x", UserType: role, IsActive: true}
	if err := repo.User.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := &model.Profile{
		UserID:     user.UserID,
		CompanyID:  companyID,
		Role:       role,
		Slug:       "p-" + companyID[:8] + "-" + employeeID,
		FirstName:  "First",
		LastName:   "Last" + employeeID,
		EmployeeID: employeeID,
		DateOfHire: mustDate(t, "2024-01-15"),
	}
	if err := repo.Profile.Create(ctx, profile); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

func seedPattern(t *testing.T, repo *repository.Repository, companyID, name string) *model.ShiftPattern {
	t.Helper()
	pattern := &model.ShiftPattern{
		CompanyID:     companyID,
		Name:          name,
		StartDate:     mustDate(t, "2025-01-06"),
		RotationWeeks: 1,
		Blocks: []model.ShiftBlock{
			{Kind: model.BlockKindCycle, WorkingDays: model.IntArray{1, 1, 0}, StartTime: "22:00", EndTime: "06:00", DurationMinutes: 480, Order: 2},
			{Kind: model.BlockKindWeekly, WorkingDays: model.IntArray{1, 1, 1, 1, 1, 0, 0}, StartTime: "09:00", EndTime: "17:00", DurationMinutes: 480, Order: 1},
		},
	}
	if err := repo.ShiftPattern.Create(context.Background(), pattern); err != nil {
		t.Fatalf("create pattern: %v", err)
	}
	return pattern
}

// ── schema ──

func TestSchema_ForeignKeysPointFromProfiles(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	// a user with neither a company nor a profile row
	user := &model.User{Email: "lonely@acme.test", PasswordHash: "x", UserType: model.UserTypeEmployee, IsActive: true}
	if err := repo.User.Create(ctx, user); err != nil {
		t.Fatalf("user without profile: %v", err)
	}
	company := seedCompany(t, repo, "owner@acme.test", "acme")

	base := func() *model.Profile {
		return &model.Profile{
			UserID:     user.UserID,
			CompanyID:  company.CompanyID,
			Role:       model.UserTypeEmployee,
			Slug:       "dangling",
			FirstName:  "Dan",
			LastName:   "Gling",
			EmployeeID: "D1",
			DateOfHire: mustDate(t, "2024-01-15"),
		}
	}

	unknownUser := base()
	unknownUser.UserID = "00000000-0000-0000-0000-000000000000"
	if err := repo.Profile.Create(ctx, unknownUser); err == nil {
		t.Error("profile of an unknown user must be rejected")
	}

	unknownCompany := base()
	unknownCompany.Slug = "dangling-company"
	unknownCompany.CompanyID = "00000000-0000-0000-0000-000000000000"
	if err := repo.Profile.Create(ctx, unknownCompany); err == nil {
		t.Error("profile of an unknown company must be rejected")
	}

	if err := repo.Profile.Create(ctx, base()); err != nil {
		t.Fatalf("valid profile: %v", err)
	}
	got, err := repo.Profile.GetBySlug(ctx, "dangling")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.User == nil || got.User.Email != "lonely@acme.test" {
		t.Errorf("preloaded user = %+v", got.User)
	}
}

// ── users ──

func TestUserRepo_EmailLookup(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	company := seedCompany(t, repo, "owner@acme.test", "acme")

	user, err := repo.User.GetByEmail(ctx, "OWNER@acme.test")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.Company == nil || user.Company.CompanyID != company.CompanyID {
		t.Errorf("expected company preloaded, got %+v", user.Company)
	}
	if user.Slug() != company.Slug {
		t.Errorf("Slug() = %q, want %q", user.Slug(), company.Slug)
	}

	exists, err := repo.User.ExistsByEmail(ctx, "owner@ACME.test", "")
	if err != nil || !exists {
		t.Errorf("ExistsByEmail = %v, %v; want true", exists, err)
	}
	exists, _ = repo.User.ExistsByEmail(ctx, "owner@acme.test", user.UserID)
	if exists {
		t.Error("ExistsByEmail must ignore the excluded user")
	}

	if _, err := repo.User.GetByEmail(ctx, "nobody@acme.test"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByEmail(missing) = %v, want ErrRecordNotFound", err)
	}
}

func TestUserRepo_Update_OptimisticLock(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	seedCompany(t, repo, "lock@acme.test", "lock")

	a, _ := repo.User.GetByEmail(ctx, "lock@acme.test")
	b, _ := repo.User.GetByEmail(ctx, "lock@acme.test")

	a.IsActive = false
	if err := repo.User.Update(ctx, a); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	if a.Version != 2 {
		t.Errorf("Version = %d, want 2", a.Version)
	}

	b.Email = "other@acme.test"
	if err := repo.User.Update(ctx, b); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("stale Update = %v, want ErrOptimisticLock", err)
	}
}

// ── profiles ──

func TestProfileRepo_SlugAndEmployeeID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	company := seedCompany(t, repo, "c@acme.test", "acme")
	manager := seedProfile(t, repo, company.CompanyID, "m@acme.test", model.UserTypeManager, "M1")
	emp := seedProfile(t, repo, company.CompanyID, "e@acme.test", model.UserTypeEmployee, "E1")

	emp.ManagedByID = &manager.ProfileID
	if err := repo.Profile.Update(ctx, emp); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Profile.GetBySlug(ctx, emp.Slug)
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.User == nil || got.User.Email != "e@acme.test" {
		t.Errorf("expected user preloaded, got %+v", got.User)
	}
	if got.ManagedBy == nil || got.ManagedBy.ProfileID != manager.ProfileID {
		t.Errorf("expected manager preloaded, got %+v", got.ManagedBy)
	}

	byEmp, err := repo.Profile.GetByEmployeeID(ctx, company.CompanyID, "M1")
	if err != nil || byEmp.ProfileID != manager.ProfileID {
		t.Errorf("GetByEmployeeID = %v, %v", byEmp, err)
	}

	// employee_id is unique inside a company
	user := &model.User{Email: "dup@acme.test", PasswordHash: "x", UserType: model.UserTypeEmployee}
	if err := repo.User.Create(ctx, user); err != nil {
		t.Fatal(err)
	}
	dup := &model.Profile{UserID: user.UserID, CompanyID: company.CompanyID, Role: model.UserTypeEmployee,
		Slug: "dup", FirstName: "Du", LastName: "Pe", EmployeeID: "E1", DateOfHire: mustDate(t, "2024-02-01")}
	if err := repo.Profile.Create(ctx, dup); err == nil {
		t.Error("expected unique violation on (company_id, employee_id)")
	}

	list, err := repo.Profile.ListByCompany(ctx, company.CompanyID)
	if err != nil || len(list) != 2 {
		t.Errorf("ListByCompany = %d profiles, %v; want 2", len(list), err)
	}
}

func TestProfileRepo_SetTeam(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	company := seedCompany(t, repo, "c@acme.test", "acme")
	a := seedProfile(t, repo, company.CompanyID, "a@acme.test", model.UserTypeEmployee, "A")
	b := seedProfile(t, repo, company.CompanyID, "b@acme.test", model.UserTypeEmployee, "B")

	team := &model.Team{CompanyID: company.CompanyID, Name: "Night"}
	if err := repo.Team.Create(ctx, team); err != nil {
		t.Fatalf("create team: %v", err)
	}

	if err := repo.Profile.SetTeam(ctx, team.TeamID, []string{a.ProfileID, b.ProfileID}); err != nil {
		t.Fatalf("SetTeam: %v", err)
	}
	members, _ := repo.Profile.ListByTeam(ctx, team.TeamID)
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}

	if err := repo.Profile.SetTeam(ctx, team.TeamID, []string{b.ProfileID}); err != nil {
		t.Fatalf("SetTeam: %v", err)
	}
	members, _ = repo.Profile.ListByTeam(ctx, team.TeamID)
	if len(members) != 1 || members[0].ProfileID != b.ProfileID {
		t.Errorf("members after replace = %+v", members)
	}

	if err := repo.Team.Delete(ctx, team.TeamID, "tester"); err != nil {
		t.Fatalf("Delete team: %v", err)
	}
	members, _ = repo.Profile.ListByTeam(ctx, team.TeamID)
	if len(members) != 0 {
		t.Error("deleting a team must clear its members")
	}
	if _, err := repo.Team.GetByID(ctx, company.CompanyID, team.TeamID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByID(deleted) = %v, want ErrRecordNotFound", err)
	}
}

// ── shift patterns ──

func TestShiftPatternRepo_BlocksOrdered(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	company := seedCompany(t, repo, "c@acme.test", "acme")
	pattern := seedPattern(t, repo, company.CompanyID, "Rotation")

	got, err := repo.ShiftPattern.GetByID(ctx, company.CompanyID, pattern.PatternID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Blocks) != 2 || got.Blocks[0].Order != 1 || got.Blocks[1].Order != 2 {
		t.Fatalf("blocks not ordered: %+v", got.Blocks)
	}
	if len(got.Blocks[1].WorkingDays) != 3 {
		t.Errorf("WorkingDays = %v, want 3 entries", got.Blocks[1].WorkingDays)
	}
	if got.StartDate.String() != "2025-01-06" {
		t.Errorf("StartDate = %s", got.StartDate)
	}

	// other tenants cannot see it
	if _, err := repo.ShiftPattern.GetByID(ctx, "other-company", pattern.PatternID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("cross-tenant GetByID = %v, want ErrRecordNotFound", err)
	}

	exists, _ := repo.ShiftPattern.ExistsByName(ctx, company.CompanyID, "rotation", "")
	if !exists {
		t.Error("ExistsByName should be case-insensitive")
	}

	list, total, err := repo.ShiftPattern.List(ctx, company.CompanyID, "rot", 0, 10)
	if err != nil || total != 1 || len(list) != 1 {
		t.Errorf("List = %d/%d, %v", len(list), total, err)
	}
}

func TestShiftPatternRepo_ReplaceBlocksAndDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	company := seedCompany(t, repo, "c@acme.test", "acme")
	pattern := seedPattern(t, repo, company.CompanyID, "Rotation")

	rows := []model.ShiftAssignment{
		{ShiftBlockID: pattern.Blocks[0].BlockID, Date: mustDate(t, "2025-01-06")},
	}
	if _, err := repo.ShiftAssignment.BatchInsert(ctx, rows, 10); err != nil {
		t.Fatalf("BatchInsert: %v", err)
	}

	newBlocks := []model.ShiftBlock{
		{Kind: model.BlockKindCycle, WorkingDays: model.IntArray{1, 0}, StartTime: "08:00", EndTime: "16:00", DurationMinutes: 480, Order: 0},
	}
	if err := repo.ShiftPattern.ReplaceBlocks(ctx, pattern.PatternID, newBlocks); err != nil {
		t.Fatalf("ReplaceBlocks: %v", err)
	}
	got, _ := repo.ShiftPattern.GetByID(ctx, company.CompanyID, pattern.PatternID)
	if len(got.Blocks) != 1 {
		t.Fatalf("blocks after replace = %d, want 1", len(got.Blocks))
	}
	if n, _ := repo.ShiftAssignment.CountByPattern(ctx, pattern.PatternID); n != 0 {
		t.Errorf("assignments of replaced blocks = %d, want 0", n)
	}

	team := &model.Team{CompanyID: company.CompanyID, Name: "Day", ShiftPatternID: &pattern.PatternID}
	if err := repo.Team.Create(ctx, team); err != nil {
		t.Fatal(err)
	}

	if err := repo.ShiftPattern.Delete(ctx, pattern.PatternID, "tester"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.ShiftPattern.GetByID(ctx, company.CompanyID, pattern.PatternID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByID(deleted) = %v", err)
	}
	gotTeam, err := repo.Team.GetByID(ctx, company.CompanyID, team.TeamID)
	if err != nil {
		t.Fatal(err)
	}
	if gotTeam.ShiftPatternID != nil {
		t.Error("deleting a pattern must detach its teams")
	}

	if err := repo.ShiftPattern.Delete(ctx, pattern.PatternID, "tester"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second Delete = %v, want ErrRecordNotFound", err)
	}
}

func TestShiftPatternRepo_DeletedNameIsReusable(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	company := seedCompany(t, repo, "c@acme.test", "acme")
	nights := seedPattern(t, repo, company.CompanyID, "Nights")

	dup := &model.ShiftPattern{CompanyID: company.CompanyID, Name: "Nights", StartDate: mustDate(t, "2025-01-06"), RotationWeeks: 1}
	if err := repo.ShiftPattern.Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second live Nights = %v, want ErrDuplicatedKey", err)
	}

	if err := repo.ShiftPattern.Delete(ctx, nights.PatternID, "tester"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if exists, _ := repo.ShiftPattern.ExistsByName(ctx, company.CompanyID, "Nights", ""); exists {
		t.Fatal("deleted pattern still holds its name")
	}

	again := &model.ShiftPattern{CompanyID: company.CompanyID, Name: "Nights", StartDate: mustDate(t, "2025-01-06"), RotationWeeks: 1}
	if err := repo.ShiftPattern.Create(ctx, again); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
	if again.PatternID == nights.PatternID {
		t.Error("recreated pattern must be a new row")
	}
}

// ── assignments ──

func TestShiftAssignmentRepo_BatchInsertIdempotent(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	company := seedCompany(t, repo, "c@acme.test", "acme")
	pattern := seedPattern(t, repo, company.CompanyID, "Rotation")
	blockID := pattern.Blocks[0].BlockID

	rows := []model.ShiftAssignment{
		{ShiftBlockID: blockID, Date: mustDate(t, "2025-01-06")},
		{ShiftBlockID: blockID, Date: mustDate(t, "2025-01-07")},
		{ShiftBlockID: blockID, Date: mustDate(t, "2025-01-08")},
	}
	n, err := repo.ShiftAssignment.BatchInsert(ctx, rows, 2)
	if err != nil {
		t.Fatalf("BatchInsert: %v", err)
	}
	if n != 3 {
		t.Errorf("inserted = %d, want 3", n)
	}

	again := []model.ShiftAssignment{
		{ShiftBlockID: blockID, Date: mustDate(t, "2025-01-06")},
		{ShiftBlockID: blockID, Date: mustDate(t, "2025-01-09")},
	}
	n, err = repo.ShiftAssignment.BatchInsert(ctx, again, 2)
	if err != nil {
		t.Fatalf("second BatchInsert: %v", err)
	}
	if n != 1 {
		t.Errorf("inserted on rerun = %d, want 1", n)
	}

	total, _ := repo.ShiftAssignment.CountByPattern(ctx, pattern.PatternID)
	if total != 4 {
		t.Errorf("CountByPattern = %d, want 4", total)
	}

	got, err := repo.ShiftAssignment.ListByPattern(ctx, pattern.PatternID, mustDate(t, "2025-01-07"), mustDate(t, "2025-01-08"))
	if err != nil {
		t.Fatalf("ListByPattern: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByPattern = %d rows, want 2", len(got))
	}
	if got[0].Date.String() != "2025-01-07" || got[0].ShiftBlock == nil {
		t.Errorf("first row = %+v", got[0])
	}
}

// ── transactions ──

func TestRepository_Transaction(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.User.Create(ctx, &model.User{Email: "rollback@acme.test", PasswordHash: "x"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction = %v, want boom", err)
	}
	if _, err := repo.User.GetByEmail(ctx, "rollback@acme.test"); err == nil {
		t.Error("rolled back user must not exist")
	}

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if err := repo.WithTx(tx).User.Create(ctx, &model.User{Email: "commit@acme.test", PasswordHash: "x"}); err != nil {
		tx.Rollback()
		t.Fatalf("Create in tx: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if _, err := repo.User.GetByEmail(ctx, "commit@acme.test"); err != nil {
		t.Errorf("committed user missing: %v", err)
	}
}

func TestRepository_NilDB(t *testing.T) {
	repo := &repository.Repository{}
	tx, err := repo.BeginTx(context.Background())
	if tx != nil || err != nil {
		t.Errorf("BeginTx without db = %v, %v; want nil, nil", tx, err)
	}
	if repo.WithTx(nil) != repo {
		t.Error("WithTx(nil) should return the same repository")
	}
	called := false
	_ = repo.Transaction(context.Background(), func(r *repository.Repository) error {
		called = r == repo
		return nil
	})
	if !called {
		t.Error("Transaction without db should run fn on the same repository")
	}
}
