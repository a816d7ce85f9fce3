package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// NetworkError represents a transport-class error from the feed. The
// reconnection loop decides retry-vs-terminate from the Retriable flag,
// never from the error text.
type NetworkError struct {
	Op        string // Operation that failed (e.g., "subscribe", "dial", "read")
	Err       error  // Underlying error
	Retriable bool   // Whether this error is retriable
}

func (e *NetworkError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) IsRetriable() bool {
	return e.Retriable
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new retriable network error
func NewNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: true}
}

// NewFatalNetworkError creates a non-retriable network error
func NewFatalNetworkError(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err, Retriable: false}
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrNoSubscriptions is returned when zero symbols could be subscribed
	// for a streaming session. The session is abandoned and retried after
	// backoff like any transport failure.
	ErrNoSubscriptions = errors.New("no successful subscriptions created")

	// ErrUnknownSymbol is returned when a symbol has no instrument key in
	// the configured table. Not retriable.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrNotFound is returned by cache reads when a key is absent or expired
	ErrNotFound = errors.New("not found")

	// ErrNoToken is returned when every token source in the chain came up empty
	ErrNoToken = errors.New("no bearer token available")
)
