// Package auth resolves Yandex Cloud credentials and turns them into bearer tokens.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kamrikalive/logg/internal/adapter/metrics"
	"github.com/kamrikalive/logg/internal/domain"
)

// CredentialSource is one strategy in the resolution chain. It returns
// domain.ErrNotApplicable (possibly wrapped) when it has nothing to offer.
type CredentialSource interface {
	Name() string
	Credential(ctx context.Context) (domain.Credential, error)
}

// ChainConfig holds the credential settings injected from config.Config.
type ChainConfig struct {
	IAMToken        string
	SAKeyJSON       string
	MetadataURL     string
	MetadataTimeout time.Duration
}

// Chain implements domain.CredentialResolver by trying sources in order.
type Chain struct {
	sources []CredentialSource
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewChain creates a resolver over the given sources, tried in the order given.
func NewChain(logger *slog.Logger, m *metrics.Metrics, sources ...CredentialSource) *Chain {
	return &Chain{
		sources: sources,
		logger:  logger.With("component", "credential_chain"),
		metrics: m,
	}
}

// NewDefaultChain builds the standard chain: direct IAM token, then service
// account key, then the instance metadata service.
func NewDefaultChain(cfg ChainConfig, logger *slog.Logger, m *metrics.Metrics) *Chain {
	return NewChain(logger, m,
		NewStaticTokenSource(cfg.IAMToken),
		NewServiceAccountKeySource(cfg.SAKeyJSON),
		NewMetadataSource(cfg.MetadataURL, &http.Client{Timeout: cfg.MetadataTimeout}),
	)
}

// Resolve returns the credential from the first applicable source. A source
// failing with anything other than ErrNotApplicable stops the chain.
func (c *Chain) Resolve(ctx context.Context) (domain.Credential, error) {
	var lastErr error
	for _, src := range c.sources {
		cred, err := src.Credential(ctx)
		if err == nil {
			cred.Source = src.Name()
			c.logger.Info("authenticated", "source", cred.Source, "kind", cred.Kind)
			if c.metrics != nil {
				c.metrics.CredentialsTotal.WithLabelValues(cred.Source).Inc()
			}
			return cred, nil
		}
		if !errors.Is(err, domain.ErrNotApplicable) {
			c.logger.Error("credential source failed", "source", src.Name(), "error", err)
			return domain.Credential{}, err
		}
		c.logger.Debug("credential source skipped", "source", src.Name(), "reason", err)
		lastErr = err
	}

	c.logger.Warn("no credential source succeeded")
	return domain.Credential{}, &domain.AuthUnavailableError{Err: lastErr}
}
