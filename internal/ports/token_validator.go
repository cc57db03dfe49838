package ports

import "context"

const (
	RoleViewer = "viewer"
	RoleAdmin  = "admin"
)

// Principal is the caller a bearer token resolved to.
type Principal struct {
	Subject string
	Role    string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Port: resolves bearer tokens to principals. Implementations return
// domain.ErrUnauthorized for unknown tokens.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Principal, error)
}
