package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/fivetwenty-io/anytype-client/internal/client"
	anyhttp "github.com/fivetwenty-io/anytype-client/internal/http"
	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

// fakeAPI serves spaces, properties and types with limit/offset paging and
// counts requests per path.
type fakeAPI struct {
	mu         sync.Mutex
	spaces     []anytype.Space
	properties map[string][]anytype.Property
	types      map[string][]anytype.Type
	hits       map[string]int

	// gate, when set, holds list requests until it is closed.
	gate chan struct{}

	server *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		spaces: []anytype.Space{
			{ID: "s1", Name: "Work", Object: "space"},
			{ID: "s2", Name: "Personal", Object: "space"},
		},
		properties: map[string][]anytype.Property{
			"s1": {
				{ID: "p1", Key: "status", Name: "Status", Format: "select"},
				{ID: "p2", Key: "due_date", Name: "Due date", Format: "date"},
			},
			"s2": {
				{ID: "p3", Key: "status", Name: "Status", Format: "select"},
			},
		},
		types: map[string][]anytype.Type{
			"s1": {
				{ID: "t1", Key: "page", Name: "Page", PluralName: "Pages"},
				{ID: "t2", Key: "task", Name: "Task", PluralName: "Tasks"},
				{ID: "t3", Key: "old", Name: "Old", Archived: true},
			},
			"s2": {
				{ID: "t4", Key: "note", Name: "Note", PluralName: "Notes"},
			},
		},
		hits: make(map[string]int),
	}

	api.server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.server.Close)

	return api
}

func (f *fakeAPI) URL() string {
	return f.server.URL
}

func (f *fakeAPI) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hits[path]
}

func (f *fakeAPI) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.hits {
		total += n
	}

	return total
}

func (f *fakeAPI) serve(writer http.ResponseWriter, request *http.Request) {
	f.mu.Lock()
	f.hits[request.URL.Path]++
	gate := f.gate
	f.mu.Unlock()

	if request.Header.Get("Authorization") != "Bearer "+testKey {
		writer.WriteHeader(http.StatusUnauthorized)

		return
	}

	parts := strings.Split(strings.Trim(strings.TrimPrefix(request.URL.Path, "/v1/spaces"), "/"), "/")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case parts[0] == "":
		waitGate(f, gate)
		writePage(writer, request, f.spaces)
	case len(parts) == 1:
		for _, space := range f.spaces {
			if space.ID == parts[0] {
				writeJSON(writer, anytype.SpaceResponse{Space: space})

				return
			}
		}

		writer.WriteHeader(http.StatusNotFound)
	case len(parts) == 2 && parts[1] == "properties":
		waitGate(f, gate)
		writePage(writer, request, f.properties[parts[0]])
	case len(parts) == 3 && parts[1] == "properties":
		for _, property := range f.properties[parts[0]] {
			if property.ID == parts[2] {
				writeJSON(writer, anytype.PropertyResponse{Property: property})

				return
			}
		}

		writer.WriteHeader(http.StatusNotFound)
	case len(parts) == 2 && parts[1] == "types":
		waitGate(f, gate)
		writePage(writer, request, f.types[parts[0]])
	case len(parts) == 3 && parts[1] == "types":
		for _, typ := range f.types[parts[0]] {
			if typ.ID == parts[2] {
				writeJSON(writer, anytype.TypeResponse{Type: typ})

				return
			}
		}

		writer.WriteHeader(http.StatusNotFound)
	default:
		writer.WriteHeader(http.StatusNotFound)
	}
}

// waitGate releases f.mu while blocked so other requests are counted.
func waitGate(f *fakeAPI, gate chan struct{}) {
	if gate == nil {
		return
	}

	f.mu.Unlock()
	<-gate
	f.mu.Lock()
}

func writePage[T any](writer http.ResponseWriter, request *http.Request, items []T) {
	query := request.URL.Query()

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	offset, _ := strconv.Atoi(query.Get("offset"))
	offset = min(max(offset, 0), len(items))
	end := min(offset+limit, len(items))

	page := anytype.Page[T]{
		Items: append([]T{}, items[offset:end]...),
		Pagination: anytype.Pagination{
			HasMore: end < len(items),
			Limit:   limit,
			Offset:  offset,
			Total:   len(items),
		},
	}

	writeJSON(writer, page)
}

func writeJSON(writer http.ResponseWriter, v interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(writer).Encode(v)
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func newClient(t *testing.T, api *fakeAPI, configure ...func(*anytype.Config)) *Client {
	t.Helper()

	config := &anytype.Config{BaseURL: api.URL(), APIKey: testKey}
	for _, fn := range configure {
		fn(config)
	}

	client, err := New(context.Background(), config, anyhttp.WithSleepFunc(noSleep))
	require.NoError(t, err)

	return client
}
