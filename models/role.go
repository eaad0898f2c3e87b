package models

import "fmt"

// Role: роль игрока в составе. Допустимые значения задаёт активный RoleSet.
type Role string

const (
	RoleTank    Role = "Tank"
	RoleDPS     Role = "DPS"
	RoleSupport Role = "Support"
	RoleSub     Role = "Sub"
	RoleCoach   Role = "Coach"

	RoleAR      Role = "AR"
	RoleSUB     Role = "SUB"
	RoleFlex    Role = "FLEX"
	RoleManager Role = "MANAGER"
	RoleCOACH   Role = "COACH"
)

// RoleSet: версионированный набор ролей. Порядок Roles задаёт приоритет
// группировки при выгрузке в таблицу; Fallback подставляется при импорте пустой ячейки.
type RoleSet struct {
	Version  string
	Roles    []Role
	Fallback Role
}

var (
	RoleSetV1 = RoleSet{
		Version:  "v1",
		Roles:    []Role{RoleTank, RoleDPS, RoleSupport, RoleSub, RoleCoach},
		Fallback: RoleTank,
	}
	RoleSetV2 = RoleSet{
		Version:  "v2",
		Roles:    []Role{RoleAR, RoleSUB, RoleFlex, RoleManager, RoleCOACH},
		Fallback: RoleAR,
	}
)

// LookupRoleSet возвращает набор ролей по версии из конфигурации.
func LookupRoleSet(version string) (RoleSet, error) {
	switch version {
	case "", RoleSetV1.Version:
		return RoleSetV1, nil
	case RoleSetV2.Version:
		return RoleSetV2, nil
	default:
		return RoleSet{}, fmt.Errorf("unknown role set %q", version)
	}
}

func (s RoleSet) Contains(r Role) bool {
	return s.Priority(r) >= 0
}

// Priority: позиция роли в наборе, -1 для посторонних ролей.
func (s RoleSet) Priority(r Role) int {
	for i, role := range s.Roles {
		if role == r {
			return i
		}
	}
	return -1
}
