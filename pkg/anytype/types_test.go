package anytype_test

import (
	"testing"

	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_WithPagination(t *testing.T) {
	t.Parallel()

	req := anytype.Get("/v1/spaces/s1/objects").
		WithQuery("offset", "5").
		WithQuery("type", "task").
		WithQuery("limit", "10").
		WithQuery("type", "page")

	next := req.WithPagination(20, 50)

	assert.Equal(t, "type=task&type=page&limit=50&offset=20", next.EncodeQuery())
	assert.Equal(t, "offset=5&type=task&limit=10&type=page", req.EncodeQuery(), "the original is unchanged")
}

func TestRequest_WithQueryDoesNotAlias(t *testing.T) {
	t.Parallel()

	base := anytype.Get("/v1/search").WithQuery("a", "1")
	left := base.WithQuery("b", "2")
	right := base.WithQuery("c", "3")

	assert.Equal(t, "a=1&b=2", left.EncodeQuery())
	assert.Equal(t, "a=1&c=3", right.EncodeQuery())
}

func TestRequest_QueryLen(t *testing.T) {
	t.Parallel()

	req := anytype.Get("/").WithQuery("limit", "10").WithQuery("q", "")

	assert.Equal(t, len("limit")+len("10")+1+len("q")+1, req.QueryLen())
	assert.Zero(t, anytype.Get("/").QueryLen())
}

func TestRequest_EncodeQuery(t *testing.T) {
	t.Parallel()

	req := anytype.Get("/").WithQuery("name", "a b&c")

	assert.Equal(t, "name=a+b%26c", req.EncodeQuery())
	assert.Empty(t, anytype.Get("/").EncodeQuery())
}

func TestRequest_QueryValue(t *testing.T) {
	t.Parallel()

	req := anytype.Get("/").WithQuery("type", "a").WithQuery("type", "b")

	value, ok := req.QueryValue("type")
	require.True(t, ok)
	assert.Equal(t, "b", value)

	_, ok = req.QueryValue("missing")
	assert.False(t, ok)
}

func TestRequest_IsIdempotent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		want   bool
	}{
		{"GET", true},
		{"get", true},
		{"HEAD", true},
		{"PUT", true},
		{"DELETE", true},
		{"OPTIONS", true},
		{"POST", false},
		{"PATCH", false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, anytype.NewRequest(tt.method, "/").IsIdempotent())
		})
	}
}

func TestRequest_WithJSON(t *testing.T) {
	t.Parallel()

	req, err := anytype.NewRequest("POST", "/v1/spaces").WithJSON(map[string]string{"name": "Work"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Work"}`, string(req.Body))

	_, err = anytype.NewRequest("POST", "/").WithJSON(make(chan int))
	require.Error(t, err)
	assert.Equal(t, anytype.KindSerialization, anytype.KindOf(err))
}

func TestPage_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("items", func(t *testing.T) {
		t.Parallel()

		var page anytype.Page[anytype.Space]

		err := json.Unmarshal([]byte(`{"items":[{"id":"s1"}],"pagination":{"has_more":true,"limit":1,"offset":0,"total":2}}`), &page)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "s1", page.Items[0].ID)
		assert.True(t, page.Pagination.HasMore)
		assert.Equal(t, 2, page.Pagination.Total)
	})

	t.Run("data alias", func(t *testing.T) {
		t.Parallel()

		var page anytype.Page[anytype.Space]

		err := json.Unmarshal([]byte(`{"data":[{"id":"s1"},{"id":"s2"}],"pagination":{"limit":100}}`), &page)
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, 100, page.Pagination.Limit)
	})
}

func TestListOptions(t *testing.T) {
	t.Parallel()

	var nilOptions *anytype.ListOptions

	assert.True(t, nilOptions.IsDefault())
	assert.True(t, (&anytype.ListOptions{}).IsDefault())
	assert.False(t, (&anytype.ListOptions{Offset: 1}).IsDefault())

	req := anytype.Get("/v1/spaces")
	assert.Equal(t, req, nilOptions.Apply(req))

	options := &anytype.ListOptions{
		Offset:  10,
		Filters: []anytype.QueryParam{{Key: "type", Value: "task"}},
	}
	assert.Equal(t, "type=task&limit=100&offset=10", options.Apply(req).EncodeQuery())

	capped := &anytype.ListOptions{Limit: 5000}
	assert.Equal(t, "limit=1000&offset=0", capped.Apply(req).EncodeQuery())
}

func TestType_DisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Task", (&anytype.Type{Key: "task", Name: "Task"}).DisplayName())
	assert.Equal(t, "task", (&anytype.Type{Key: "task", Name: "  "}).DisplayName())
}

func TestSpace_IsChat(t *testing.T) {
	t.Parallel()

	assert.True(t, (&anytype.Space{Object: anytype.SpaceModelChat}).IsChat())
	assert.False(t, (&anytype.Space{Object: anytype.SpaceModelSpace}).IsChat())
}
