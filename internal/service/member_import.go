package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/dto"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/repository"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/metrics"
)

const maxImportRows = 500

var (
	ErrImportNoData      = errors.New("The sheet has no data rows (the first row is the header).")
	ErrImportTooManyRows = fmt.Errorf("The sheet has more than %d data rows.", maxImportRows)
	ErrImportBadHeader   = errors.New("The sheet header is missing a required column.")
)

// import sheet columns
const (
	colFirstName   = "first_name"
	colLastName    = "last_name"
	colEmail       = "email"
	colEmployeeID  = "employee_id"
	colRole        = "role"
	colDateOfHire  = "date_of_hire"
	colDaysOffLeft = "days_off_left"
	colManagedBy   = "managed_by_employee_id"
	colManagesTeam = "manages_team"
)

var requiredColumns = []string{colFirstName, colLastName, colEmail, colEmployeeID, colRole}

var optionalColumns = []string{colDateOfHire, colDaysOffLeft, colManagedBy, colManagesTeam}

// ImportMemberRow one data row of the import sheet. Row is the sheet row number.
type ImportMemberRow struct {
	Row                 int
	FirstName           string `validate:"required,min=2,max=30"`
	LastName            string `validate:"required,min=2,max=30"`
	Email               string `validate:"required,email,max=254"`
	EmployeeID          string `validate:"required,min=1,max=20"`
	Role                string `validate:"required,oneof=Employee Manager HR"`
	DateOfHire          string `validate:"omitempty,datetime=2006-01-02"`
	DaysOffLeft         string `validate:"omitempty,number"`
	ManagedByEmployeeID string `validate:"omitempty,max=20"`
	ManagesTeam         string `validate:"omitempty,min=3,max=50"`
}

var rowValidator = validator.New(validator.WithRequiredStructEnabled())

// ParseMemberSheet reads the first sheet of an .xlsx import file. Columns
// are matched by header name in any order; blank rows are skipped.
func ParseMemberSheet(reader io.Reader) ([]ImportMemberRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open import sheet: %w", err)
	}
	defer f.Close()

	sheetRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read import sheet: %w", err)
	}
	if len(sheetRows) < 2 {
		return nil, ErrImportNoData
	}

	index := headerIndex(sheetRows[0])
	for _, col := range requiredColumns {
		if index[col] < 0 {
			return nil, fmt.Errorf("%w: %s", ErrImportBadHeader, col)
		}
	}

	var rows []ImportMemberRow
	for i := 1; i < len(sheetRows); i++ {
		cells := sheetRows[i]
		get := func(col string) string {
			idx := index[col]
			if idx < 0 || idx >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx])
		}

		row := ImportMemberRow{
			Row:                 i + 1,
			FirstName:           get(colFirstName),
			LastName:            get(colLastName),
			Email:               get(colEmail),
			EmployeeID:          get(colEmployeeID),
			Role:                get(colRole),
			DateOfHire:          get(colDateOfHire),
			DaysOffLeft:         get(colDaysOffLeft),
			ManagedByEmployeeID: get(colManagedBy),
			ManagesTeam:         get(colManagesTeam),
		}
		if row.isBlank() {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int)
	for _, col := range requiredColumns {
		idx[col] = -1
	}
	for _, col := range optionalColumns {
		idx[col] = -1
	}
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		if _, ok := idx[key]; ok {
			idx[key] = i
		}
	}
	return idx
}

func (r *ImportMemberRow) isBlank() bool {
	return r.FirstName == "" && r.LastName == "" && r.Email == "" && r.EmployeeID == "" && r.Role == ""
}

// importRow is a row that passed validation, waiting to be created.
type importRow struct {
	row       ImportMemberRow
	input     *memberInput
	managerID string // employee id of the manager, resolved at creation
}

// ImportMembers validates every row, then creates the valid ones in one
// transaction. Managers and HR are created first so employees may name a
// manager from the same sheet.
func (s *accountService) ImportMembers(ctx context.Context, caller Caller, rows []ImportMemberRow) (*dto.ImportMembersResponse, error) {
	company, err := s.registeringCompany(ctx, caller)
	if err != nil {
		return nil, err
	}

	resp := &dto.ImportMembersResponse{Total: len(rows)}
	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportRowError{Row: row, Reason: reason})
	}

	// phase 1: row checks that need no writes
	seenEmail := make(map[string]int)
	seenEmpID := make(map[string]int)
	var valid []importRow
	for _, row := range rows {
		in, reason := s.validateRow(row)
		if reason != "" {
			fail(row.Row, reason)
			continue
		}
		if first, ok := seenEmail[in.Email]; ok {
			fail(row.Row, fmt.Sprintf("duplicate email, first used on row %d", first))
			continue
		}
		if first, ok := seenEmpID[in.EmployeeID]; ok {
			fail(row.Row, fmt.Sprintf("duplicate employee_id, first used on row %d", first))
			continue
		}
		seenEmail[in.Email] = row.Row
		seenEmpID[in.EmployeeID] = row.Row
		valid = append(valid, importRow{row: row, input: in, managerID: row.ManagedByEmployeeID})
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return rolePriority(valid[i].input.Role) < rolePriority(valid[j].input.Role)
	})

	// phase 2: create in a single transaction
	var created []dto.ImportedMember
	var roles []string
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		createdManagers := make(map[string]string) // employee id -> profile id
		for _, v := range valid {
			if v.managerID != "" {
				id, reason, err := s.resolveImportManager(ctx, tx, company.CompanyID, v.managerID, createdManagers)
				if err != nil {
					return err
				}
				if reason != "" {
					fail(v.row.Row, reason)
					continue
				}
				v.input.ManagedByID = &id
			}

			if _, err := s.checkMember(ctx, tx, company.CompanyID, v.input); err != nil {
				if isBusinessError(err) {
					fail(v.row.Row, err.Error())
					continue
				}
				return err
			}

			profile, password, err := s.createMember(ctx, tx, caller, company, v.input)
			if err != nil {
				return err
			}
			if profile.IsManager() {
				createdManagers[profile.EmployeeID] = profile.ProfileID
			}
			created = append(created, dto.ImportedMember{
				Row:          v.row.Row,
				Email:        v.input.Email,
				Slug:         profile.Slug,
				TempPassword: password,
			})
			roles = append(roles, profile.Role)
			s.sendWelcome(profile)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("import members failed", zap.String("company_id", company.CompanyID), zap.Error(err))
		return nil, err
	}

	for _, role := range roles {
		metrics.ObserveMemberCreated(role, "import")
	}
	sort.Slice(created, func(i, j int) bool { return created[i].Row < created[j].Row })
	sort.Slice(resp.Errors, func(i, j int) bool { return resp.Errors[i].Row < resp.Errors[j].Row })
	resp.Created = created
	resp.Success = len(created)

	s.logger.Info("members imported",
		zap.String("company_id", company.CompanyID),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// validateRow returns the member input of row, or why the row is rejected.
func (s *accountService) validateRow(row ImportMemberRow) (*memberInput, string) {
	if err := rowValidator.Struct(row); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return nil, fmt.Sprintf("%s: failed %q check", columnOf(fe.Field()), fe.Tag())
		}
		return nil, err.Error()
	}

	in := &memberInput{
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		Email:       normalizeEmail(row.Email),
		EmployeeID:  row.EmployeeID,
		Role:        row.Role,
		DateOfHire:  model.NewDate(s.now()),
		ManagesTeam: nonEmpty(&row.ManagesTeam),
	}
	if row.DateOfHire != "" {
		d, err := model.ParseDate(row.DateOfHire)
		if err != nil {
			return nil, ErrInvalidDate.Error()
		}
		in.DateOfHire = d
	}
	if row.DaysOffLeft != "" {
		n, err := strconv.Atoi(row.DaysOffLeft)
		if err != nil || n < 0 {
			return nil, colDaysOffLeft + ": must be a whole number of zero or more"
		}
		in.DaysOffLeft = n
	}
	// role rules that do not need the manager lookup
	if in.Role == model.UserTypeEmployee && row.ManagedByEmployeeID == "" {
		return nil, ErrManagedByRequired.Error()
	}
	if in.Role == model.UserTypeManager && in.ManagesTeam == nil {
		return nil, ErrManagesTeamRequired.Error()
	}
	return in, ""
}

// resolveImportManager maps a manager employee id to a profile id, looking
// at managers created earlier in the same import first.
func (s *accountService) resolveImportManager(ctx context.Context, repo *repository.Repository, companyID, employeeID string, created map[string]string) (string, string, error) {
	if id, ok := created[employeeID]; ok {
		return id, "", nil
	}
	manager, err := repo.Profile.GetByEmployeeID(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Sprintf("%s: no manager with employee id %s", colManagedBy, employeeID), nil
		}
		return "", "", err
	}
	if !manager.IsManager() {
		return "", fmt.Sprintf("%s: %s is not a manager", colManagedBy, employeeID), nil
	}
	return manager.ProfileID, "", nil
}

func rolePriority(role string) int {
	switch role {
	case model.UserTypeManager:
		return 0
	case model.UserTypeHR:
		return 1
	default:
		return 2
	}
}

// columnOf maps a struct field name to its sheet column.
func columnOf(field string) string {
	switch field {
	case "FirstName":
		return colFirstName
	case "LastName":
		return colLastName
	case "Email":
		return colEmail
	case "EmployeeID":
		return colEmployeeID
	case "Role":
		return colRole
	case "DateOfHire":
		return colDateOfHire
	case "DaysOffLeft":
		return colDaysOffLeft
	case "ManagedByEmployeeID":
		return colManagedBy
	case "ManagesTeam":
		return colManagesTeam
	}
	return field
}
