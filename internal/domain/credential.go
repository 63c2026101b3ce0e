package domain

import (
	"crypto/rsa"
	"time"
)

// CredentialKind distinguishes how a Credential authenticates.
type CredentialKind string

const (
	CredentialBearer            CredentialKind = "bearer"
	CredentialServiceAccountKey CredentialKind = "service_account_key"
)

// Credential is the result of credential resolution. Exactly one of Token or
// ServiceAccountKey is set, depending on Kind.
type Credential struct {
	Kind              CredentialKind
	Token             string
	ServiceAccountKey *ServiceAccountKey
	Source            string // name of the source that produced it, for logs and metrics
}

// ServiceAccountKey is a parsed Yandex Cloud authorized key.
type ServiceAccountKey struct {
	ID               string          `json:"id"`
	ServiceAccountID string          `json:"service_account_id"`
	PrivateKeyPEM    string          `json:"private_key"`
	PrivateKey       *rsa.PrivateKey `json:"-"`
}

// IAMToken is a bearer token obtained by exchanging a service account key.
type IAMToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
