package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kamrikalive/logg/internal/adapter/metrics"
	"github.com/kamrikalive/logg/internal/domain"
)

// ReadLogsConfig is the part of config.Config the log reader needs.
type ReadLogsConfig struct {
	LogGroupID        string
	DefaultLogGroupID string
	BackendTimeout    time.Duration // 0 means no deadline beyond the caller's context
}

// ReadLogsUseCase resolves credentials, builds a query and reads one page of logs.
type ReadLogsUseCase struct {
	cfg         ReadLogsConfig
	credentials domain.CredentialResolver
	tokens      domain.TokenIssuer
	backend     domain.LogBackend
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewReadLogsUseCase creates a new ReadLogsUseCase.
func NewReadLogsUseCase(
	cfg ReadLogsConfig,
	credentials domain.CredentialResolver,
	tokens domain.TokenIssuer,
	backend domain.LogBackend,
	logger *slog.Logger,
	m *metrics.Metrics,
) *ReadLogsUseCase {
	return &ReadLogsUseCase{
		cfg:         cfg,
		credentials: credentials,
		tokens:      tokens,
		backend:     backend,
		logger:      logger,
		metrics:     m,
	}
}

// Read returns a single page of entries for resourceID in [since, until].
// It does not follow NextPageToken; callers re-invoke with it for more.
func (uc *ReadLogsUseCase) Read(ctx context.Context, resourceID string, since, until time.Time, pageSize int, pageToken string) (*domain.LogPage, error) {
	// 1. Log group
	logGroupID, err := uc.logGroupID()
	if err != nil {
		return nil, err
	}

	// 2. Credentials
	cred, err := uc.credentials.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	token, err := uc.tokens.BearerToken(ctx, cred)
	if err != nil {
		return nil, err
	}

	// 3. Query
	query := domain.NewLogQuery(logGroupID, resourceID, since, until, pageSize, pageToken)

	uc.logger.Info("reading logs",
		"log_group_id", query.LogGroupID,
		"resource_id", query.ResourceID,
		"page_size", query.PageSize,
		"page_token", query.PageToken != "",
	)

	// 4. Backend call
	if uc.cfg.BackendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.BackendTimeout)
		defer cancel()
	}

	start := time.Now()
	page, err := uc.backend.Read(ctx, token, query)
	uc.observe(start, err)
	if err != nil {
		uc.logger.Error("failed to read logs from backend", "error", err, "resource_id", resourceID)
		var backendErr *domain.BackendError
		if !errors.As(err, &backendErr) {
			err = &domain.BackendError{Op: "read", Err: err}
		}
		return nil, err
	}

	uc.logger.Info("logs fetched",
		"entries", len(page.Entries),
		"next_page_token", page.NextPageToken != "",
	)

	return page, nil
}

func (uc *ReadLogsUseCase) logGroupID() (string, error) {
	if uc.cfg.LogGroupID != "" {
		return uc.cfg.LogGroupID, nil
	}
	if uc.cfg.DefaultLogGroupID != "" {
		return uc.cfg.DefaultLogGroupID, nil
	}
	return "", &domain.ConfigError{
		Setting: "YC_LOG_GROUP_ID",
		Msg:     "log group id is not configured (set YC_LOG_GROUP_ID or YC_DEFAULT_LOG_GROUP_ID)",
	}
}

func (uc *ReadLogsUseCase) observe(start time.Time, err error) {
	if uc.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	uc.metrics.BackendDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}
