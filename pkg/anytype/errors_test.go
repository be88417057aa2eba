package anytype_test

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *anytype.Error
		expected string
	}{
		{
			name: "api",
			err: &anytype.Error{
				Kind: anytype.KindAPI, Method: "GET", Path: "/v1/spaces",
				URL: "http://127.0.0.1:31009/v1/spaces", StatusCode: 500, Body: "boom",
			},
			expected: "api error 500 for GET http://127.0.0.1:31009/v1/spaces: boom",
		},
		{
			name:     "not found",
			err:      &anytype.Error{Kind: anytype.KindNotFound, Method: "GET", Path: "/v1/spaces/x", StatusCode: 404},
			expected: "not found for GET /v1/spaces/x",
		},
		{
			name:     "rate limit",
			err:      &anytype.Error{Kind: anytype.KindRateLimitExceeded, Header: "ratelimit-reset", Wait: 45 * time.Second},
			expected: `rate limit exceeded (header "ratelimit-reset", wait 45s)`,
		},
		{
			name:     "too many retries",
			err:      &anytype.Error{Kind: anytype.KindTooManyRetries, Attempts: 4, Err: io.EOF},
			expected: "too many retries (4 attempts): EOF",
		},
		{
			name:     "validation",
			err:      &anytype.Error{Kind: anytype.KindValidation, Message: "id must not be empty"},
			expected: "validation: id must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("listing: %w", &anytype.Error{Kind: anytype.KindNotFound, StatusCode: 404})

	require.ErrorIs(t, err, anytype.ErrNotFound)
	assert.NotErrorIs(t, err, anytype.ErrUnauthorized)

	specific := &anytype.Error{Kind: anytype.KindNotFound, StatusCode: 410}
	assert.NotErrorIs(t, err, specific, "a populated target is not a sentinel")
}

func TestKindPredicates(t *testing.T) {
	t.Parallel()

	wrapped := &anytype.Error{
		Kind:     anytype.KindTooManyRetries,
		Attempts: 4,
		Err:      &anytype.Error{Kind: anytype.KindAPI, StatusCode: 503},
	}

	assert.True(t, anytype.IsTooManyRetries(wrapped))
	assert.Equal(t, 503, anytype.StatusCode(wrapped))
	assert.Equal(t, anytype.KindTooManyRetries, anytype.KindOf(wrapped))
	assert.True(t, anytype.IsRetryable(wrapped))

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", &anytype.Error{Kind: anytype.KindNotFound}, anytype.IsNotFound},
		{"unauthorized", &anytype.Error{Kind: anytype.KindUnauthorized}, anytype.IsUnauthorized},
		{"forbidden", &anytype.Error{Kind: anytype.KindForbidden}, anytype.IsForbidden},
		{"validation", &anytype.Error{Kind: anytype.KindValidation}, anytype.IsValidation},
		{"rate limited", &anytype.Error{Kind: anytype.KindRateLimitExceeded}, anytype.IsRateLimited},
		{"auth", &anytype.Error{Kind: anytype.KindAuth}, anytype.IsAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.check(errors.New("plain")))
			assert.False(t, tt.check(nil))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, anytype.IsRetryable(&anytype.Error{Kind: anytype.KindHTTP}))
	assert.True(t, anytype.IsRetryable(&anytype.Error{Kind: anytype.KindRateLimitExceeded}))
	assert.True(t, anytype.IsRetryable(&anytype.Error{Kind: anytype.KindAPI, StatusCode: 408}))
	assert.True(t, anytype.IsRetryable(&anytype.Error{Kind: anytype.KindAPI, StatusCode: 502}))
	assert.False(t, anytype.IsRetryable(&anytype.Error{Kind: anytype.KindAPI, StatusCode: 409}))
	assert.False(t, anytype.IsRetryable(&anytype.Error{Kind: anytype.KindNotFound, StatusCode: 404}))
	assert.False(t, anytype.IsRetryable(errors.New("plain")))
}

func TestErrorKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rate_limit_exceeded", anytype.KindRateLimitExceeded.String())
	assert.Equal(t, "kind(99)", anytype.ErrorKind(99).String())
}
