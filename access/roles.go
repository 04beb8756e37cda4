package access

import (
	"fmt"
	"strings"
)

// Role is the closed set of identities a caller can hold.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleJudge      Role = "JUDGE"
	RoleMentor     Role = "MENTOR"
	RoleTeam       Role = "TEAM"
)

var AllRoles = []Role{RoleSuperAdmin, RoleAdmin, RoleJudge, RoleMentor, RoleTeam}

// Capability names a family of operations the boundary layer gates on.
type Capability int

const (
	CapManageSettings Capability = iota + 1
	CapManageStaff
	CapManageTeams
	CapManageCheckpoints
	CapAssignJudges
	CapSubscribeCheckpoints
	CapScoreTeams
	CapMentorTeams
	CapBookMentors
)

var capabilities = map[Role]map[Capability]bool{
	RoleSuperAdmin: {
		CapManageSettings:       true,
		CapManageStaff:          true,
		CapManageTeams:          true,
		CapManageCheckpoints:    true,
		CapAssignJudges:         true,
		CapSubscribeCheckpoints: true,
	},
	RoleAdmin: {
		CapManageTeams:          true,
		CapManageCheckpoints:    true,
		CapAssignJudges:         true,
		CapSubscribeCheckpoints: true,
	},
	RoleJudge: {
		CapScoreTeams: true,
	},
	RoleMentor: {
		CapMentorTeams: true,
	},
	RoleTeam: {
		CapBookMentors: true,
	},
}

// ParseRole accepts the wire form of a role, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := capabilities[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (r Role) String() string {
	return string(r)
}

// Actor is an already authenticated caller.
type Actor struct {
	UserID uint
	Role   Role
}
