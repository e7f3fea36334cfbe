package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Action is a mutation a user may attempt on a prize.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

const objectPrize = "prize"

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Policy is the fixed route policy: users may create and update prizes,
// admins inherit that and may also delete.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds the embedded RBAC policy.
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("authz model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz enforcer: %w", err)
	}
	rules := [][]any{
		{subject(RoleUser), objectPrize, string(ActionCreate)},
		{subject(RoleUser), objectPrize, string(ActionUpdate)},
		{subject(RoleAdmin), objectPrize, string(ActionDelete)},
	}
	for _, r := range rules {
		if _, err := e.AddPolicy(r...); err != nil {
			return nil, fmt.Errorf("authz policy: %w", err)
		}
	}
	if _, err := e.AddGroupingPolicy(subject(RoleAdmin), subject(RoleUser)); err != nil {
		return nil, fmt.Errorf("authz grouping: %w", err)
	}
	return &Policy{enforcer: e}, nil
}

func subject(r Role) string {
	return "role:" + string(r)
}

// Authorize returns ErrForbidden unless u's role permits action.
func (p *Policy) Authorize(u *User, action Action) error {
	if u == nil {
		return ErrUnauthorized
	}
	ok, err := p.enforcer.Enforce(subject(u.Role), objectPrize, string(action))
	if err != nil {
		return fmt.Errorf("authz enforce: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin returns ErrForbidden unless u is an admin.
func (p *Policy) RequireAdmin(u *User) error {
	return p.Authorize(u, ActionDelete)
}
