// Package rbac maps the closed set of user roles to permissions and provides
// chi middleware enforcing them. Roles are a typed enum, never free-form
// strings; permission derivation is an exhaustive switch so adding a role
// forces a decision here.
package rbac

import "fmt"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a stored or submitted role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string { return string(r) }

type Permission string

const (
	PermCourseCreate   Permission = "course:create"
	PermCourseUpdate   Permission = "course:update"
	PermCourseDelete   Permission = "course:delete"
	PermExerciseCreate Permission = "exercise:create"
	PermExerciseUpdate Permission = "exercise:update"
	PermExerciseDelete Permission = "exercise:delete"
	PermAttemptViewAll Permission = "attempt:view-all"
	PermUsersList      Permission = "users:list"
)

// Permissions returns the grants for a role. The switch is exhaustive over
// the Role constants; an unknown role has no permissions.
func (r Role) Permissions() []Permission {
	switch r {
	case RoleStudent:
		return nil
	case RoleTeacher:
		return []Permission{
			PermCourseCreate,
			PermCourseUpdate,
			PermExerciseCreate,
			PermExerciseUpdate,
		}
	case RoleAdmin:
		return []Permission{
			PermCourseCreate,
			PermCourseUpdate,
			PermCourseDelete,
			PermExerciseCreate,
			PermExerciseUpdate,
			PermExerciseDelete,
			PermAttemptViewAll,
			PermUsersList,
		}
	default:
		return nil
	}
}

func (r Role) Has(p Permission) bool {
	for _, g := range r.Permissions() {
		if g == p {
			return true
		}
	}
	return false
}
