package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kamrikalive/logg/internal/adapter/metrics"
	"github.com/kamrikalive/logg/internal/domain"
)

const (
	jwtLifetime = time.Hour
	// Cached tokens are dropped this long before the IAM-reported expiry.
	expiryMargin = 5 * time.Minute
)

// TokenExchanger implements domain.TokenIssuer. Bearer credentials pass through;
// service account keys are exchanged for an IAM token via a signed JWT.
type TokenExchanger struct {
	iamURL  string
	client  *http.Client
	cache   domain.TokenCache // optional
	maxTTL  time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewTokenExchanger creates a TokenExchanger. cache may be nil to disable memoization.
func NewTokenExchanger(iamURL string, client *http.Client, cache domain.TokenCache, maxTTL time.Duration, logger *slog.Logger, m *metrics.Metrics) *TokenExchanger {
	return &TokenExchanger{
		iamURL:  iamURL,
		client:  client,
		cache:   cache,
		maxTTL:  maxTTL,
		now:     time.Now,
		logger:  logger.With("component", "token_exchanger"),
		metrics: m,
	}
}

// BearerToken returns a token usable in an Authorization: Bearer header.
func (e *TokenExchanger) BearerToken(ctx context.Context, cred domain.Credential) (string, error) {
	switch cred.Kind {
	case domain.CredentialBearer:
		if cred.Token == "" {
			return "", &domain.AuthUnavailableError{Err: errors.New("empty bearer token")}
		}
		return cred.Token, nil
	case domain.CredentialServiceAccountKey:
		if cred.ServiceAccountKey == nil {
			return "", &domain.AuthUnavailableError{Err: errors.New("service account key credential without a key")}
		}
		return e.exchange(ctx, cred.ServiceAccountKey)
	default:
		return "", &domain.AuthUnavailableError{Err: fmt.Errorf("unsupported credential kind %q", cred.Kind)}
	}
}

func (e *TokenExchanger) exchange(ctx context.Context, key *domain.ServiceAccountKey) (string, error) {
	if e.cache != nil {
		tok, ok, err := e.cache.Get(ctx, key.ID)
		switch {
		case err != nil:
			e.logger.Warn("token cache lookup failed, exchanging directly", "error", err)
		case ok && e.now().Before(tok.ExpiresAt):
			if e.metrics != nil {
				e.metrics.TokenCacheHits.Inc()
			}
			return tok.Token, nil
		}
		if e.metrics != nil {
			e.metrics.TokenCacheMisses.Inc()
		}
	}

	tok, err := e.requestIAMToken(ctx, key)
	if err != nil {
		return "", &domain.AuthUnavailableError{Err: err}
	}

	if e.cache != nil {
		ttl := tok.ExpiresAt.Sub(e.now()) - expiryMargin
		if e.maxTTL > 0 && ttl > e.maxTTL {
			ttl = e.maxTTL
		}
		if ttl > 0 {
			if err := e.cache.Set(ctx, key.ID, tok, ttl); err != nil {
				e.logger.Warn("failed to cache IAM token", "error", err)
			}
		}
	}

	return tok.Token, nil
}

// SignJWT builds the PS256 assertion the IAM service expects for a key.
func (e *TokenExchanger) SignJWT(key *domain.ServiceAccountKey) (string, error) {
	now := e.now()
	token := jwt.NewWithClaims(jwt.SigningMethodPS256, jwt.MapClaims{
		"iss": key.ServiceAccountID,
		"aud": e.iamURL,
		"iat": now.Unix(),
		"exp": now.Add(jwtLifetime).Unix(),
	})
	token.Header["kid"] = key.ID
	return token.SignedString(key.PrivateKey)
}

type iamTokenResponse struct {
	IAMToken  string    `json:"iamToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (e *TokenExchanger) requestIAMToken(ctx context.Context, key *domain.ServiceAccountKey) (domain.IAMToken, error) {
	signed, err := e.SignJWT(key)
	if err != nil {
		return domain.IAMToken{}, fmt.Errorf("failed to sign JWT: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"jwt": signed})
	if err != nil {
		return domain.IAMToken{}, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.iamURL, bytes.NewReader(payload))
	if err != nil {
		return domain.IAMToken{}, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.IAMToken{}, fmt.Errorf("IAM token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.IAMToken{}, fmt.Errorf("IAM token exchange returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out iamTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.IAMToken{}, fmt.Errorf("failed to decode IAM token response: %w", err)
	}
	if out.IAMToken == "" {
		return domain.IAMToken{}, errors.New("IAM token response has no iamToken")
	}

	e.logger.Info("exchanged service account key for IAM token", "key_id", key.ID, "expires_at", out.ExpiresAt)
	return domain.IAMToken{Token: out.IAMToken, ExpiresAt: out.ExpiresAt}, nil
}
