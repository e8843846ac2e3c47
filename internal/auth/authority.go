package auth

import (
	"sort"
	"strings"
)

// RolePrefix marks a role-derived authority, distinguishing it from a plain
// permission authority carried in the same flat set.
const RolePrefix = "ROLE_"

// Authorities flattens a resolved role graph into the derived authority set:
// one "ROLE_<name>" entry per distinct role plus every permission name
// reachable through any role, verbatim. Duplicates collapse and the result
// is sorted so the same graph always yields the same slice. A user with no
// roles yields nil.
func Authorities(roles []Role) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles)*2)
	for _, role := range roles {
		seen[RolePrefix+string(role.Name)] = struct{}{}
		for _, perm := range role.Permissions {
			name := strings.TrimSpace(perm.Name)
			if name == "" {
				continue
			}
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Principal is the authenticated identity for a single request. It is
// reconstructed from a verified token (or computed at login) and never
// persisted.
type Principal struct {
	Username    string
	Authorities []string
}

// HasAuthority reports whether the principal carries the named authority.
func (p Principal) HasAuthority(name string) bool {
	for _, a := range p.Authorities {
		if a == name {
			return true
		}
	}
	return false
}

// HasAnyAuthority reports whether the principal carries at least one of names.
func (p Principal) HasAnyAuthority(names ...string) bool {
	for _, n := range names {
		if p.HasAuthority(n) {
			return true
		}
	}
	return false
}

// HasAllAuthorities reports whether the principal carries every one of names.
func (p Principal) HasAllAuthorities(names ...string) bool {
	for _, n := range names {
		if !p.HasAuthority(n) {
			return false
		}
	}
	return true
}

// JoinAuthorities renders the authority set as the comma-separated claim
// format embedded in tokens.
func JoinAuthorities(authorities []string) string {
	return strings.Join(authorities, ",")
}

// SplitAuthorities parses the comma-separated claim back into a deduplicated
// authority set, dropping empty entries.
func SplitAuthorities(claim string) []string {
	if strings.TrimSpace(claim) == "" {
		return nil
	}
	parts := strings.Split(claim, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
