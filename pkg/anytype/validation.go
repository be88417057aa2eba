package anytype

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
)

// ValidationLimits are the local ceilings checked before a request leaves the process.
type ValidationLimits struct {
	MaxQueryLen    int `json:"max_query_len"    yaml:"max_query_len"    mapstructure:"max_query_len"`
	MaxMarkdownLen int `json:"max_markdown_len" yaml:"max_markdown_len" mapstructure:"max_markdown_len"`
	MaxNameLen     int `json:"max_name_len"     yaml:"max_name_len"     mapstructure:"max_name_len"`
	MaxIDLen       int `json:"max_id_len"       yaml:"max_id_len"       mapstructure:"max_id_len"`
	MaxTagLen      int `json:"max_tag_len"      yaml:"max_tag_len"      mapstructure:"max_tag_len"`
}

// DefaultValidationLimits returns the service's documented limits.
func DefaultValidationLimits() ValidationLimits {
	return ValidationLimits{
		MaxQueryLen:    constants.MaxQueryLen,
		MaxMarkdownLen: constants.MaxMarkdownLen,
		MaxNameLen:     constants.MaxNameLen,
		MaxIDLen:       constants.MaxIDLen,
		MaxTagLen:      constants.MaxTagLen,
	}
}

// MaxBodyLen is the request body ceiling.
func (l ValidationLimits) MaxBodyLen() int {
	return l.MaxMarkdownLen
}

func validationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidateQuery checks the encoded query size of req.
func (l ValidationLimits) ValidateQuery(req Request) error {
	if l.MaxQueryLen > 0 && req.QueryLen() > l.MaxQueryLen {
		return validationError("query length %d exceeds limit %d", req.QueryLen(), l.MaxQueryLen)
	}

	return nil
}

// ValidateBody checks the body size of req.
func (l ValidationLimits) ValidateBody(req Request) error {
	if l.MaxBodyLen() > 0 && len(req.Body) > l.MaxBodyLen() {
		return validationError("body length %d exceeds limit %d", len(req.Body), l.MaxBodyLen())
	}

	return nil
}

// ValidateRequest runs every request-level check.
func (l ValidationLimits) ValidateRequest(req Request) error {
	err := l.ValidateQuery(req)
	if err != nil {
		return err
	}

	return l.ValidateBody(req)
}

// ValidateName checks that a name is non-blank and within limits.
func (l ValidationLimits) ValidateName(name, field string) error {
	if strings.TrimSpace(name) == "" {
		return validationError("%s must not be empty", field)
	}

	if l.MaxNameLen > 0 && len(name) > l.MaxNameLen {
		return validationError("%s length %d exceeds limit %d", field, len(name), l.MaxNameLen)
	}

	return nil
}

// ValidateTag checks a tag name.
func (l ValidationLimits) ValidateTag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return validationError("tag must not be empty")
	}

	if l.MaxTagLen > 0 && len(tag) > l.MaxTagLen {
		return validationError("tag length %d exceeds limit %d", len(tag), l.MaxTagLen)
	}

	return nil
}

// ValidateID checks that an identifier is present, has no path separators
// and is within limits.
func (l ValidationLimits) ValidateID(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return validationError("%s must not be empty", field)
	}

	if strings.ContainsAny(id, "/?#") {
		return validationError("%s contains invalid characters", field)
	}

	if l.MaxIDLen > 0 && len(id) > l.MaxIDLen {
		return validationError("%s length %d exceeds limit %d", field, len(id), l.MaxIDLen)
	}

	return nil
}

// LooksLikeObjectID reports whether s has the shape of an object id:
// "bafyrei" followed by base32 to 59 characters, optionally followed by a dot
// and a short base36 suffix.
func LooksLikeObjectID(s string) bool {
	id, suffix, hasSuffix := strings.Cut(s, ".")

	if len(id) != constants.ObjectIDLen || !strings.HasPrefix(id, constants.ObjectIDPrefix) {
		return false
	}

	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
			return false
		}
	}

	if !hasSuffix {
		return true
	}

	if suffix == "" || len(suffix) > constants.ObjectIDSuffixMaxLen {
		return false
	}

	for _, r := range suffix {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}

	return true
}
