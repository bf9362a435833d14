package auth

import (
	"context"

	"github.com/mind-engage/mindengage-progress/internal/rbac"
)

type subjectKey struct{}

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// Caller returns the authenticated subject and role; ok is false for anonymous requests.
func Caller(ctx context.Context) (sub, role string, ok bool) {
	sub = SubjectFromContext(ctx)
	role = rbac.RoleFromContext(ctx)
	return sub, role, sub != "" && role != ""
}
