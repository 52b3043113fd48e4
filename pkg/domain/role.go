package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role gates which route tree and landing page apply to a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAuthor Role = "author"
	RoleReader Role = "reader"
)

// Landing routes per role.
const (
	AdminLanding  = "/admin-dashboard"
	AuthorLanding = "/author-dashboard"
	ReaderLanding = "/user-home"
)

var titleCaser = cases.Title(language.English)

// Roles returns every role in display order.
func Roles() []Role {
	return []Role{RoleReader, RoleAuthor, RoleAdmin}
}

// ParseRole normalizes s into a Role. The web form value "user" is accepted
// as an alias for reader.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "author":
		return RoleAuthor, true
	case "reader", "user":
		return RoleReader, true
	}
	return "", false
}

// Valid reports whether r is a member of the role enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleReader:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Title returns the display form, e.g. "Author".
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return titleCaser.String(string(r))
}

// Landing returns the default route for a role. Anything that is not admin or
// author lands on the reader home.
func Landing(r Role) string {
	switch r {
	case RoleAdmin:
		return AdminLanding
	case RoleAuthor:
		return AuthorLanding
	default:
		return ReaderLanding
	}
}

// HasRole reports whether r is one of allowed.
func HasRole(r Role, allowed []Role) bool {
	for _, a := range allowed {
		if a == r {
			return true
		}
	}
	return false
}
