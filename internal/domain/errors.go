package domain

import (
	"errors"
	"fmt"
)

// ErrNotApplicable is returned by a credential source that has nothing to offer,
// telling the resolver to move on to the next source.
var ErrNotApplicable = errors.New("credential source not applicable")

// ConfigError reports a missing required configuration setting.
type ConfigError struct {
	Setting string
	Msg     string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Msg)
}

// AuthConfigError reports a credential setting that is present but unusable.
type AuthConfigError struct {
	Source string
	Err    error
}

func (e *AuthConfigError) Error() string {
	return fmt.Sprintf("authentication configuration error (%s): %v", e.Source, e.Err)
}

func (e *AuthConfigError) Unwrap() error { return e.Err }

// AuthUnavailableError reports that no credential could be obtained.
type AuthUnavailableError struct {
	Err error
}

func (e *AuthUnavailableError) Error() string {
	msg := "authentication failed: no valid credentials found; set YC_IAM_TOKEN, YC_SA_KEY_JSON or run inside Yandex Cloud"
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthUnavailableError) Unwrap() error { return e.Err }

// BackendError wraps a transport or backend-reported failure.
type BackendError struct {
	Op   string
	Code string // gRPC status code name, empty if unknown
	Err  error
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("log backend %s failed (%s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("log backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
