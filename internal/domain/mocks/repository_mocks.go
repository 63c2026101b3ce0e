package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/kamrikalive/logg/internal/domain"
)

// MockLogBackend is a mock implementation of domain.LogBackend for testing.
type MockLogBackend struct {
	mu         sync.Mutex
	Queries    []domain.LogQuery
	Tokens     []string
	ReadResult *domain.LogPage
	ReadErr    error
}

func (m *MockLogBackend) Read(ctx context.Context, bearerToken string, query domain.LogQuery) (*domain.LogPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	m.Tokens = append(m.Tokens, bearerToken)
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	if m.ReadResult == nil {
		return &domain.LogPage{}, nil
	}
	return m.ReadResult, nil
}

// MockCredentialResolver is a mock implementation of domain.CredentialResolver.
type MockCredentialResolver struct {
	Credential domain.Credential
	Err        error
	Calls      int
}

func (m *MockCredentialResolver) Resolve(ctx context.Context) (domain.Credential, error) {
	m.Calls++
	if m.Err != nil {
		return domain.Credential{}, m.Err
	}
	return m.Credential, nil
}

// MockTokenIssuer returns the credential's Token, or Err when set.
type MockTokenIssuer struct {
	Err error
}

func (m *MockTokenIssuer) BearerToken(ctx context.Context, cred domain.Credential) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return cred.Token, nil
}

// MockTokenCache is an in-memory domain.TokenCache that ignores expiry.
type MockTokenCache struct {
	mu      sync.Mutex
	Entries map[string]domain.IAMToken
	TTLs    map[string]time.Duration
	GetErr  error
	SetErr  error
}

func (m *MockTokenCache) Get(ctx context.Context, key string) (domain.IAMToken, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return domain.IAMToken{}, false, m.GetErr
	}
	tok, ok := m.Entries[key]
	return tok, ok, nil
}

func (m *MockTokenCache) Set(ctx context.Context, key string, token domain.IAMToken, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Entries == nil {
		m.Entries = make(map[string]domain.IAMToken)
		m.TTLs = make(map[string]time.Duration)
	}
	m.Entries[key] = token
	m.TTLs[key] = ttl
	return nil
}
