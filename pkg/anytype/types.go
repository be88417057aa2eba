package anytype

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/anytype-client/internal/constants"
	"github.com/goccy/go-json"
)

// QueryParam is a single query string entry. Requests keep an ordered list of
// them because duplicate keys are meaningful to the service's filters.
type QueryParam struct {
	Key   string
	Value string
}

// Request describes one logical call to the service. It is treated as
// immutable: the With* helpers return modified copies.
type Request struct {
	Method string
	Path   string
	Query  []QueryParam
	Body   []byte

	// Unauthenticated requests skip the credential check and the
	// Authorization header.
	Unauthenticated bool
}

// NewRequest creates a request for method and path.
func NewRequest(method, path string) Request {
	return Request{Method: method, Path: path}
}

// Get creates a GET request for path.
func Get(path string) Request {
	return NewRequest(http.MethodGet, path)
}

// WithQuery returns a copy of r with key=value appended to the query.
func (r Request) WithQuery(key, value string) Request {
	query := make([]QueryParam, 0, len(r.Query)+1)
	query = append(query, r.Query...)
	r.Query = append(query, QueryParam{Key: key, Value: value})

	return r
}

// WithBody returns a copy of r carrying body.
func (r Request) WithBody(body []byte) Request {
	r.Body = body

	return r
}

// WithJSON returns a copy of r carrying v encoded as JSON.
func (r Request) WithJSON(v interface{}) (Request, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return r, &Error{Kind: KindSerialization, Method: r.Method, Path: r.Path, Err: err}
	}

	return r.WithBody(body), nil
}

// WithPagination returns a copy of r whose limit and offset entries are
// replaced. Every other entry keeps its position; limit then offset are
// appended at the end.
func (r Request) WithPagination(offset, limit int) Request {
	query := make([]QueryParam, 0, len(r.Query)+2)

	for _, param := range r.Query {
		if param.Key == "limit" || param.Key == "offset" {
			continue
		}

		query = append(query, param)
	}

	query = append(query,
		QueryParam{Key: "limit", Value: strconv.Itoa(limit)},
		QueryParam{Key: "offset", Value: strconv.Itoa(offset)},
	)
	r.Query = query

	return r
}

// QueryLen is the size of the query as checked against ValidationLimits:
// len(key)+len(value)+1 for every entry.
func (r Request) QueryLen() int {
	total := 0
	for _, param := range r.Query {
		total += len(param.Key) + len(param.Value) + 1
	}

	return total
}

// EncodeQuery renders the query string in entry order.
func (r Request) EncodeQuery() string {
	if len(r.Query) == 0 {
		return ""
	}

	parts := make([]string, 0, len(r.Query))
	for _, param := range r.Query {
		parts = append(parts, url.QueryEscape(param.Key)+"="+url.QueryEscape(param.Value))
	}

	return strings.Join(parts, "&")
}

// QueryValue returns the last value for key, if any.
func (r Request) QueryValue(key string) (string, bool) {
	for i := len(r.Query) - 1; i >= 0; i-- {
		if r.Query[i].Key == key {
			return r.Query[i].Value, true
		}
	}

	return "", false
}

// IsIdempotent reports whether the method can be repeated without
// duplicating an effect on the service.
func (r Request) IsIdempotent() bool {
	switch strings.ToUpper(r.Method) {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}

// Pagination is the page metadata returned with every list response.
type Pagination struct {
	HasMore bool `json:"has_more" yaml:"has_more"`
	Limit   int  `json:"limit"    yaml:"limit"`
	Offset  int  `json:"offset"   yaml:"offset"`
	Total   int  `json:"total"    yaml:"total"`
}

// Page is one page of a collection.
type Page[T any] struct {
	Items      []T        `json:"items"      yaml:"items"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// UnmarshalJSON accepts the legacy "data" alias for "items".
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Items      []T        `json:"items"`
		Data       []T        `json:"data"`
		Pagination Pagination `json:"pagination"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	p.Items = raw.Items
	if p.Items == nil {
		p.Items = raw.Data
	}

	p.Pagination = raw.Pagination

	return nil
}

// ListOptions narrows a list call. A nil *ListOptions, or one with zero
// Limit, zero Offset and no Filters, lets the client serve metadata lists
// from its cache.
type ListOptions struct {
	Limit   int
	Offset  int
	Filters []QueryParam
}

// IsDefault reports whether the options request the whole, unfiltered collection.
func (o *ListOptions) IsDefault() bool {
	return o == nil || (o.Limit == 0 && o.Offset == 0 && len(o.Filters) == 0)
}

// Apply adds the options to req.
func (o *ListOptions) Apply(req Request) Request {
	if o == nil {
		return req
	}

	for _, filter := range o.Filters {
		req = req.WithQuery(filter.Key, filter.Value)
	}

	if o.Limit > 0 || o.Offset > 0 {
		limit := o.Limit
		if limit <= 0 {
			limit = constants.DefaultPageLimit
		}

		limit = min(limit, constants.MaxPageLimit)

		req = req.WithPagination(o.Offset, limit)
	}

	return req
}
