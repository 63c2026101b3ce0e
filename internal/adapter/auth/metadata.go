package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kamrikalive/logg/internal/domain"
)

// MetadataFlavorHeader must be sent to the instance metadata service.
const MetadataFlavorHeader = "Metadata-Flavor"

// MetadataSource obtains a token from the compute instance metadata service.
// It only works inside Yandex Cloud, so every failure is treated as "not applicable".
type MetadataSource struct {
	url    string
	client *http.Client
}

// NewMetadataSource creates a metadata source. The client's Timeout bounds the request.
func NewMetadataSource(url string, client *http.Client) *MetadataSource {
	return &MetadataSource{url: url, client: client}
}

func (s *MetadataSource) Name() string { return "metadata_service" }

type metadataTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (s *MetadataSource) Credential(ctx context.Context) (domain.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("metadata service: %v: %w", err, domain.ErrNotApplicable)
	}
	req.Header.Set(MetadataFlavorHeader, "Google")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("metadata service unavailable: %v: %w", err, domain.ErrNotApplicable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.Credential{}, fmt.Errorf("metadata service returned %d: %w", resp.StatusCode, domain.ErrNotApplicable)
	}

	var body metadataTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Credential{}, fmt.Errorf("metadata service: bad token response: %v: %w", err, domain.ErrNotApplicable)
	}
	if body.AccessToken == "" {
		return domain.Credential{}, fmt.Errorf("metadata service: empty access_token: %w", domain.ErrNotApplicable)
	}

	return domain.Credential{Kind: domain.CredentialBearer, Token: body.AccessToken}, nil
}
