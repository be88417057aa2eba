// Package anytype provides types, interfaces, and helpers for working with the
// Anytype local API.
//
// # Overview
//
// The anytype package defines the domain types (Space, Property, Type), the
// request descriptor executed by the HTTP layer, and the interfaces for the
// resource clients (SpacesClient, PropertiesClient, TypesClient). A concrete
// implementation is provided by the anyclient package, which wires
// configuration, transport, credentials and the metadata cache.
//
// # Requests and pagination
//
// Request is an immutable descriptor: method, path, an ordered list of query
// parameters and an optional body. List endpoints return a PagedResult that
// holds the first page and fetches later pages on demand:
//
//	result, err := cli.Spaces().List(ctx, &anytype.ListOptions{Limit: 50})
//	if err != nil { /* handle error */ }
//
//	for space, err := range result.All(ctx) {
//	  if err != nil { break }
//	  _ = space
//	}
//
// or collect everything at once with CollectAll. On a failed page CollectAll
// returns the items gathered so far together with the error.
//
// # Errors
//
// Every failure from the service is an *Error whose Kind says what went
// wrong. Use errors.Is with the kind sentinels (ErrNotFound, ErrUnauthorized,
// ...) or the predicates IsNotFound, IsRateLimited, IsRetryable and friends.
//
// # Metadata cache
//
// MetadataCache keeps spaces, and per space the properties and types, indexed
// by both id and key. The client fills it on first use; a Backend (memory,
// redis or NATS KV) can hold snapshots so several processes start warm.
package anytype
