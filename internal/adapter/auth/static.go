package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/kamrikalive/logg/internal/domain"
)

// StaticTokenSource serves a directly configured IAM token.
type StaticTokenSource struct {
	token string
}

func NewStaticTokenSource(token string) *StaticTokenSource {
	return &StaticTokenSource{token: strings.TrimSpace(token)}
}

func (s *StaticTokenSource) Name() string { return "iam_token" }

func (s *StaticTokenSource) Credential(ctx context.Context) (domain.Credential, error) {
	if s.token == "" {
		return domain.Credential{}, fmt.Errorf("YC_IAM_TOKEN is not set: %w", domain.ErrNotApplicable)
	}
	return domain.Credential{Kind: domain.CredentialBearer, Token: s.token}, nil
}
