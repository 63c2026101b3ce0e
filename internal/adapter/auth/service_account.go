package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kamrikalive/logg/internal/domain"
)

// ServiceAccountKeySource parses an authorized key document supplied via YC_SA_KEY_JSON.
type ServiceAccountKeySource struct {
	raw string
}

func NewServiceAccountKeySource(raw string) *ServiceAccountKeySource {
	return &ServiceAccountKeySource{raw: strings.TrimSpace(raw)}
}

func (s *ServiceAccountKeySource) Name() string { return "service_account_key" }

// Credential parses the key on every call. A present but malformed document
// is an AuthConfigError rather than a fallthrough.
func (s *ServiceAccountKeySource) Credential(ctx context.Context) (domain.Credential, error) {
	if s.raw == "" {
		return domain.Credential{}, fmt.Errorf("YC_SA_KEY_JSON is not set: %w", domain.ErrNotApplicable)
	}

	key, err := ParseServiceAccountKey([]byte(s.raw))
	if err != nil {
		return domain.Credential{}, &domain.AuthConfigError{Source: "YC_SA_KEY_JSON", Err: err}
	}

	return domain.Credential{Kind: domain.CredentialServiceAccountKey, ServiceAccountKey: key}, nil
}

// ParseServiceAccountKey decodes a Yandex Cloud authorized key JSON document
// and its RSA private key.
func ParseServiceAccountKey(data []byte) (*domain.ServiceAccountKey, error) {
	var key domain.ServiceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("invalid key JSON: %w", err)
	}

	var missing []string
	if key.ID == "" {
		missing = append(missing, "id")
	}
	if key.ServiceAccountID == "" {
		missing = append(missing, "service_account_id")
	}
	if key.PrivateKeyPEM == "" {
		missing = append(missing, "private_key")
	}
	if len(missing) > 0 {
		return nil, errors.New("missing fields: " + strings.Join(missing, ", "))
	}

	// The PEM block may be preceded by a "PLEASE DO NOT REMOVE THIS LINE!" banner;
	// pem decoding skips it.
	pk, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(key.PrivateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("invalid private_key: %w", err)
	}
	key.PrivateKey = pk

	return &key, nil
}
