package domain

import (
	"context"
	"time"
)

// LogBackend abstracts the remote log-reading service.
type LogBackend interface {
	// Read issues a single read call authenticated with the given bearer token.
	Read(ctx context.Context, bearerToken string, query LogQuery) (*LogPage, error)
}

// CredentialResolver produces a credential for one backend call.
type CredentialResolver interface {
	Resolve(ctx context.Context) (Credential, error)
}

// TokenIssuer turns a resolved credential into a bearer token the backend accepts.
type TokenIssuer interface {
	BearerToken(ctx context.Context, cred Credential) (string, error)
}

// TokenCache memoizes exchanged IAM tokens across requests.
type TokenCache interface {
	// Get returns the cached token for key, or ok=false on a miss.
	Get(ctx context.Context, key string) (token IAMToken, ok bool, err error)

	// Set stores a token for at most ttl.
	Set(ctx context.Context, key string, token IAMToken, ttl time.Duration) error
}
