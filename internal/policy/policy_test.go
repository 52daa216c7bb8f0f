package policy

import (
	"sort"
	"testing"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
)

func TestHas(t *testing.T) {
	tests := []struct {
		userType string
		perm     Permission
		want     bool
	}{
		{model.UserTypeCompany, ChangeCompany, true},
		{model.UserTypeCompany, AddEmployee, true},
		{model.UserTypeHR, ChangeCompany, false},
		{model.UserTypeHR, AddManager, true},
		{model.UserTypeHR, AddTeam, true},
		{model.UserTypeManager, ChangeEmployee, true},
		{model.UserTypeManager, AddUser, false},
		{model.UserTypeManager, AddShiftPattern, true},
		{model.UserTypeManager, AddTeam, false},
		{model.UserTypeEmployee, ViewEmployee, true},
		{model.UserTypeEmployee, ChangeEmployee, false},
		{model.UserTypeEmployee, AddShiftPattern, false},
		{"Unknown", ViewEmployee, false},
	}

	for _, tt := range tests {
		if got := Has(tt.userType, tt.perm); got != tt.want {
			t.Errorf("Has(%s, %s) = %v, want %v", tt.userType, tt.perm, got, tt.want)
		}
	}
}

func TestHas_AllRequired(t *testing.T) {
	if Has(model.UserTypeManager, ViewEmployee, AddUser) {
		t.Error("Has must require every permission")
	}
	if !Has(model.UserTypeHR, ViewEmployee, AddUser) {
		t.Error("HR holds both permissions")
	}
}

func TestCanManageMembers(t *testing.T) {
	want := map[string]bool{
		model.UserTypeCompany:  true,
		model.UserTypeHR:       true,
		model.UserTypeManager:  false,
		model.UserTypeEmployee: false,
	}
	for ut, w := range want {
		if got := CanManageMembers(ut); got != w {
			t.Errorf("CanManageMembers(%s) = %v, want %v", ut, got, w)
		}
	}
}

func TestMatrix(t *testing.T) {
	m := Matrix()
	if len(m) != 4 {
		t.Fatalf("Matrix has %d user types, want 4", len(m))
	}
	if got := len(m[model.UserTypeCompany]); got != 27 {
		t.Errorf("Company permissions = %d, want 27", got)
	}
	if got := m[model.UserTypeEmployee]; len(got) != 3 {
		t.Errorf("Employee permissions = %v, want 3 entries", got)
	}
	for ut, perms := range m {
		if !sort.StringsAreSorted(perms) {
			t.Errorf("%s permissions are not sorted", ut)
		}
	}
}
