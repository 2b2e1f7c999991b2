package auth

import "context"

// Context key under which the authenticated principal is stored.
const principalKey = "principal"

// EveryoneGroup is a group every principal belongs to, in addition to
// whatever groups it was configured with.
const EveryoneGroup = "everyone"

// Principal is an authenticated identity together with the groups it
// belongs to.
type Principal interface {
	GetName() string
	GetAuthMethod() string
	GetGroupNames() []string
	IsInGroup(group string) bool
}

// StaticPrincipal is a Principal whose identity and groups are fixed at
// authentication time.
type StaticPrincipal struct {
	name       string
	authMethod string
	groups     map[string]bool
}

func NewStaticPrincipal(name string, authMethod string, groups []string) *StaticPrincipal {
	membership := make(map[string]bool, len(groups)+1)
	for _, g := range groups {
		membership[g] = true
	}
	membership[EveryoneGroup] = true
	return &StaticPrincipal{
		name:       name,
		authMethod: authMethod,
		groups:     membership,
	}
}

func (p *StaticPrincipal) GetName() string {
	return p.name
}

func (p *StaticPrincipal) GetAuthMethod() string {
	return p.authMethod
}

func (p *StaticPrincipal) GetGroupNames() []string {
	names := make([]string, 0, len(p.groups))
	for g := range p.groups {
		names = append(names, g)
	}
	return names
}

func (p *StaticPrincipal) IsInGroup(group string) bool {
	return p.groups[group]
}

// GetPrincipal returns the principal stored in ctx, or the anonymous
// principal if the request was never authenticated.
func GetPrincipal(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey).(Principal); ok {
		return p
	}
	return anonymousPrincipal
}

// WithPrincipal returns a child of ctx carrying principal.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}
