// Package policy maps user types to the permissions they hold.
package policy

import (
	"sort"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
)

// Permission codename
type Permission string

// Account permissions
const (
	ChangeCompany Permission = "change_company"
	DeleteCompany Permission = "delete_company"
	ViewCompany   Permission = "view_company"

	AddUser    Permission = "add_user"
	ChangeUser Permission = "change_user"
	DeleteUser Permission = "delete_user"
	ViewUser   Permission = "view_user"

	AddHR    Permission = "add_hr"
	ChangeHR Permission = "change_hr"
	DeleteHR Permission = "delete_hr"
	ViewHR   Permission = "view_hr"

	AddManager    Permission = "add_manager"
	ChangeManager Permission = "change_manager"
	DeleteManager Permission = "delete_manager"
	ViewManager   Permission = "view_manager"

	AddEmployee    Permission = "add_employee"
	ChangeEmployee Permission = "change_employee"
	DeleteEmployee Permission = "delete_employee"
	ViewEmployee   Permission = "view_employee"
)

// Scheduling permissions
const (
	AddShiftPattern    Permission = "add_shiftpattern"
	ChangeShiftPattern Permission = "change_shiftpattern"
	DeleteShiftPattern Permission = "delete_shiftpattern"
	ViewShiftPattern   Permission = "view_shiftpattern"

	AddTeam    Permission = "add_team"
	ChangeTeam Permission = "change_team"
	DeleteTeam Permission = "delete_team"
	ViewTeam   Permission = "view_team"
)

var memberPerms = []Permission{
	AddUser, ChangeUser, DeleteUser, ViewUser,
	AddHR, ChangeHR, DeleteHR, ViewHR,
	AddManager, ChangeManager, DeleteManager, ViewManager,
	AddEmployee, ChangeEmployee, DeleteEmployee, ViewEmployee,
}

var schedulingPerms = []Permission{
	AddShiftPattern, ChangeShiftPattern, DeleteShiftPattern, ViewShiftPattern,
	AddTeam, ChangeTeam, DeleteTeam, ViewTeam,
}

var matrix = map[string]map[Permission]struct{}{
	model.UserTypeCompany: set(
		[]Permission{ChangeCompany, DeleteCompany, ViewCompany},
		memberPerms,
		schedulingPerms,
	),
	model.UserTypeHR: set(
		memberPerms,
		schedulingPerms,
	),
	model.UserTypeManager: set(
		[]Permission{ChangeEmployee, ViewEmployee},
		[]Permission{AddShiftPattern, ChangeShiftPattern, ViewShiftPattern, ViewTeam},
	),
	model.UserTypeEmployee: set(
		[]Permission{ViewEmployee},
		[]Permission{ViewShiftPattern, ViewTeam},
	),
}

func set(groups ...[]Permission) map[Permission]struct{} {
	out := make(map[Permission]struct{})
	for _, g := range groups {
		for _, p := range g {
			out[p] = struct{}{}
		}
	}
	return out
}

// Has reports whether userType holds every one of perms.
func Has(userType string, perms ...Permission) bool {
	granted, ok := matrix[userType]
	if !ok {
		return false
	}
	for _, p := range perms {
		if _, ok := granted[p]; !ok {
			return false
		}
	}
	return true
}

// For returns the sorted permission codenames of userType.
func For(userType string) []string {
	granted := matrix[userType]
	out := make([]string, 0, len(granted))
	for p := range granted {
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out
}

// Matrix returns every user type with its permissions.
func Matrix() map[string][]string {
	out := make(map[string][]string, len(matrix))
	for _, ut := range model.UserTypes {
		out[ut] = For(ut)
	}
	return out
}

// CanManageMembers HR and Company users register, list and edit members.
func CanManageMembers(userType string) bool {
	return Has(userType, AddUser, ChangeUser, ViewUser)
}
