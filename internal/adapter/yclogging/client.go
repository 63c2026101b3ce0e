// Package yclogging reads log entries from Yandex Cloud Logging over gRPC.
package yclogging

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"

	logging "github.com/yandex-cloud/go-genproto/yandex/cloud/logging/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/kamrikalive/logg/internal/domain"
)

// Config configures the backend connection.
type Config struct {
	Endpoint string
	// Insecure disables TLS. Only meant for in-process test servers.
	Insecure bool
}

// Client implements domain.LogBackend on top of LogReadingService.
type Client struct {
	conn     *grpc.ClientConn
	api      logging.LogReadingServiceClient
	insecure bool
	logger   *slog.Logger
}

// NewClient creates a client for the configured endpoint. The connection is
// established lazily on the first call.
func NewClient(cfg Config, logger *slog.Logger, opts ...grpc.DialOption) (*Client, error) {
	var transport grpc.DialOption
	if cfg.Insecure {
		transport = grpc.WithTransportCredentials(insecure.NewCredentials())
	} else {
		transport = grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12}))
	}

	dialOpts := append([]grpc.DialOption{transport, grpc.WithUserAgent("logg")}, opts...)
	conn, err := grpc.NewClient(cfg.Endpoint, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", cfg.Endpoint, err)
	}

	return &Client{
		conn:     conn,
		api:      logging.NewLogReadingServiceClient(conn),
		insecure: cfg.Insecure,
		logger:   logger.With("component", "yclogging"),
	}, nil
}

// Read performs one LogReadingService.Read call.
func (c *Client) Read(ctx context.Context, bearerToken string, query domain.LogQuery) (*domain.LogPage, error) {
	creds := bearerCredentials{token: bearerToken, requireTLS: !c.insecure}

	resp, err := c.api.Read(ctx, NewReadRequest(query), grpc.PerRPCCredentials(creds))
	if err != nil {
		st := status.Convert(err)
		return nil, &domain.BackendError{Op: "read", Code: st.Code().String(), Err: errors.New(st.Message())}
	}

	return PageFromResponse(resp), nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// bearerCredentials attaches an IAM token to a single RPC.
type bearerCredentials struct {
	token      string
	requireTLS bool
}

func (b bearerCredentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}

func (b bearerCredentials) RequireTransportSecurity() bool {
	return b.requireTLS
}
