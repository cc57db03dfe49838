package auth

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"fleet-tracking-service/internal/domain"
	"fleet-tracking-service/internal/ports"
)

// StaticTokens validates bearer tokens against a fixed table loaded at startup.
type StaticTokens struct {
	byHash map[[sha256.Size]byte]ports.Principal
}

// ParseStaticTokens reads "token=role" pairs separated by commas, e.g.
// "s3cret=admin,viewer-token=viewer". Roles are admin or viewer.
func ParseStaticTokens(raw string) (*StaticTokens, error) {
	st := &StaticTokens{byHash: make(map[[sha256.Size]byte]ports.Principal)}

	for i, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		token, role, ok := strings.Cut(pair, "=")
		token, role = strings.TrimSpace(token), strings.TrimSpace(role)
		if !ok || token == "" {
			return nil, fmt.Errorf("parse tokens: entry %d: want token=role: %w", i+1, domain.ErrInvalidArgument)
		}
		if role != ports.RoleAdmin && role != ports.RoleViewer {
			return nil, fmt.Errorf("parse tokens: entry %d: unknown role %q: %w", i+1, role, domain.ErrInvalidArgument)
		}

		st.byHash[sha256.Sum256([]byte(token))] = ports.Principal{
			Subject: fmt.Sprintf("%s-%d", role, i+1),
			Role:    role,
		}
	}

	return st, nil
}

func (s *StaticTokens) Len() int { return len(s.byHash) }

func (s *StaticTokens) Validate(_ context.Context, token string) (ports.Principal, error) {
	p, ok := s.byHash[sha256.Sum256([]byte(token))]
	if !ok {
		return ports.Principal{}, fmt.Errorf("validate token: %w", domain.ErrUnauthorized)
	}
	return p, nil
}
