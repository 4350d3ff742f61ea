// Package authroles maps identity provider groups to document-visibility roles.
package authroles

import (
	"strings"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
)

// StaticRoleMapper maps Azure AD group names or object ids to roles.
// Group comparison is case-insensitive; admin wins over legal professional,
// and any other signed-in user is a client.
type StaticRoleMapper struct {
	AdminGroup string
	LegalGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	if hasGroup(groups, m.AdminGroup) {
		return domainauth.RoleAdmin
	}
	if hasGroup(groups, m.LegalGroup) {
		return domainauth.RoleLegalProfessional
	}
	return domainauth.RoleClient
}

func hasGroup(groups []string, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return false
	}
	for _, g := range groups {
		if strings.EqualFold(strings.TrimSpace(g), want) {
			return true
		}
	}
	return false
}
