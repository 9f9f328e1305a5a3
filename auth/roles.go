package auth

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned on registration
	RoleUser UserRole = "user"
	// RoleAdmin is an administrative role
	RoleAdmin UserRole = "admin"
)

var roleRank = map[UserRole]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// KnownRole reports whether the role is part of the enumerated set.
func KnownRole(role UserRole) bool {
	_, ok := roleRank[role]
	return ok
}

// RoleAtLeast compares two roles using the role hierarchy. An unknown role
// on either side fails the comparison.
func RoleAtLeast(role, min UserRole) bool {
	r, ok := roleRank[role]
	if !ok {
		return false
	}

	m, ok := roleRank[min]
	if !ok {
		return false
	}

	return r >= m
}
