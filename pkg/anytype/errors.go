package anytype

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorKind classifies an Error.
type ErrorKind int

// Error kinds produced by the client.
const (
	KindUnknown ErrorKind = iota
	KindHTTP
	KindAPI
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindRateLimitExceeded
	KindDeserialization
	KindSerialization
	KindAuth
	KindTooManyRetries
)

var kindNames = map[ErrorKind]string{
	KindUnknown:           "unknown",
	KindHTTP:              "http",
	KindAPI:               "api",
	KindValidation:        "validation",
	KindNotFound:          "not_found",
	KindUnauthorized:      "unauthorized",
	KindForbidden:         "forbidden",
	KindRateLimitExceeded: "rate_limit_exceeded",
	KindDeserialization:   "deserialization",
	KindSerialization:     "serialization",
	KindAuth:              "auth",
	KindTooManyRetries:    "too_many_retries",
}

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every operation that talks to the service. It carries
// enough context (method, path, status, body) for a caller to decide whether
// to retry at a higher level.
type Error struct {
	Kind       ErrorKind
	Method     string
	Path       string
	URL        string
	StatusCode int
	Body       string
	Message    string

	// Header and Wait are set for rate-limit failures.
	Header string
	Wait   time.Duration

	// Attempts is the number of attempts made before giving up.
	Attempts int

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	switch e.Kind {
	case KindAPI:
		fmt.Fprintf(&b, "api error %d for %s %s", e.StatusCode, e.Method, e.URL)
	case KindRateLimitExceeded:
		b.WriteString("rate limit exceeded")

		if e.Header != "" || e.Wait > 0 {
			fmt.Fprintf(&b, " (header %q, wait %s)", e.Header, e.Wait)
		}
	case KindTooManyRetries:
		fmt.Fprintf(&b, "too many retries (%d attempts)", e.Attempts)
	default:
		b.WriteString(strings.ReplaceAll(e.Kind.String(), "_", " "))
	}

	if e.Kind != KindAPI && e.Method != "" {
		fmt.Fprintf(&b, " for %s %s", e.Method, e.Path)
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. Sentinels such as
// ErrNotFound only carry a kind, so errors.Is(err, ErrNotFound) matches any
// not-found failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.StatusCode == 0 && t.Method == "" && t.Message == ""
}

// Kind sentinels for use with errors.Is.
var (
	ErrHTTP              = &Error{Kind: KindHTTP}
	ErrAPI               = &Error{Kind: KindAPI}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrRateLimitExceeded = &Error{Kind: KindRateLimitExceeded}
	ErrDeserialization   = &Error{Kind: KindDeserialization}
	ErrSerialization     = &Error{Kind: KindSerialization}
	ErrAuth              = &Error{Kind: KindAuth}
	ErrTooManyRetries    = &Error{Kind: KindTooManyRetries}
)

// Common static errors that can be wrapped with context.
var (
	ErrNoMoreItems         = errors.New("no more items")
	ErrConfigRequired      = errors.New("config is required")
	ErrBaseURLRequired     = errors.New("base URL is required")
	ErrNoCredential        = errors.New("no API key set")
	ErrCacheDisabled       = errors.New("cache disabled")
	ErrSnapshotMiss        = errors.New("snapshot not found")
	ErrSnapshotExpired     = errors.New("snapshot expired")
	ErrUnsupportedBackend  = errors.New("unsupported snapshot backend")
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS backend")
	ErrRedisConfigRequired = errors.New("redis configuration required for redis backend")
	ErrSpaceNotFound       = errors.New("space not found")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrTypeNotFound        = errors.New("type not found")
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}

	return KindUnknown
}

// hasKind walks the whole chain, so a TooManyRetries error wrapping an API
// error answers for both kinds.
func hasKind(err error, kind ErrorKind) bool {
	for err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			return false
		}

		if apiErr.Kind == kind {
			return true
		}

		err = apiErr.Err
	}

	return false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return hasKind(err, KindNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasKind(err, KindUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasKind(err, KindForbidden)
}

// IsValidation checks if the error is a validation error, local or from the service.
func IsValidation(err error) bool {
	return hasKind(err, KindValidation)
}

// IsRateLimited checks if the error is a rate limit error.
func IsRateLimited(err error) bool {
	return hasKind(err, KindRateLimitExceeded)
}

// IsAuth checks if the error reports a missing credential.
func IsAuth(err error) bool {
	return hasKind(err, KindAuth)
}

// IsTooManyRetries checks if the retry budget ran out.
func IsTooManyRetries(err error) bool {
	return hasKind(err, KindTooManyRetries)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	for err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			return 0
		}

		if apiErr.StatusCode != 0 {
			return apiErr.StatusCode
		}

		err = apiErr.Err
	}

	return 0
}

// IsRetryable reports whether a caller may reasonably retry the whole
// operation later: transport failures, rate limiting, exhausted retry budgets
// and server-side (5xx/408) failures.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindHTTP, KindRateLimitExceeded, KindTooManyRetries:
		return true
	case KindAPI:
		code := StatusCode(err)

		return code == 408 || code >= 500
	default:
		return false
	}
}
