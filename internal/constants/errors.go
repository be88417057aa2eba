package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIKey           = errors.New("no API key configured, use 'anyapi config set-key' or set ANYTYPE_KEY")
	ErrInvalidOutput      = errors.New("invalid output format")
	ErrInvalidRateLimit   = errors.New("invalid rate limit retry value")
	ErrUnknownLookupKind  = errors.New("unknown lookup kind, expected property or type")
	ErrEmptyKeyFromPrompt = errors.New("empty API key")
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
)
