package rbac

import (
	"context"
	"slices"
	"strings"
)

type Checker struct {
	rolePermissions map[string][]string
}

// NewChecker copies rp; a nil rp means RolePermissions.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	cp := make(map[string][]string, len(rp))
	for role, perms := range rp {
		cp[role] = slices.Clone(perms)
	}
	return &Checker{rolePermissions: cp}
}

// Has reports whether role grants perm. Patterns may be "*" or end in "*" ("progress:*").
func (c *Checker) Has(role, perm string) bool {
	return slices.ContainsFunc(c.rolePermissions[role], func(p string) bool {
		return matchPerm(p, perm)
	})
}

func (c *Checker) Any(role string, perms ...string) bool {
	return slices.ContainsFunc(perms, func(p string) bool { return c.Has(role, p) })
}

// Permissions lists what role was granted, as configured.
func (c *Checker) Permissions(role string) []string {
	return slices.Clone(c.rolePermissions[role])
}

func matchPerm(pattern, perm string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(perm, prefix)
	}
	return pattern == perm
}

// ---- role in context ----

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	s, _ := ctx.Value(roleKey{}).(string)
	return s
}
