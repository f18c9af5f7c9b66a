package models

import "fmt"

// StaffRole is a per-event privilege level. Roles form a single total order;
// holding a role implies every lesser privilege.
type StaffRole int

const (
	RoleNone StaffRole = iota
	RoleScanner
	RoleCheckIn
	RoleManager
)

// HasRole reports whether actual satisfies a requirement of at-least
// required under the role ordering.
func HasRole(actual, required StaffRole) bool {
	return actual >= required
}

func (r StaffRole) String() string {
	switch r {
	case RoleNone:
		return "none"
	case RoleScanner:
		return "scanner"
	case RoleCheckIn:
		return "checkin"
	case RoleManager:
		return "manager"
	}
	return fmt.Sprintf("staffrole(%d)", int(r))
}

// ParseStaffRole maps the wire name of a role back to its value.
func ParseStaffRole(s string) (StaffRole, error) {
	switch s {
	case "none":
		return RoleNone, nil
	case "scanner":
		return RoleScanner, nil
	case "checkin":
		return RoleCheckIn, nil
	case "manager":
		return RoleManager, nil
	}
	return RoleNone, fmt.Errorf("unknown staff role %q", s)
}
