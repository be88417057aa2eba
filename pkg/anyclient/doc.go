// Package anyclient provides the primary entry point for constructing an
// anytype API client that implements the anytype.Client interface.
//
// It fills configuration defaults and wires the HTTP executor, credentials,
// the metadata cache and an optional snapshot backend on top of the
// interfaces and types defined in the anytype package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/anytype-client/pkg/anyclient"
//	  "github.com/fivetwenty-io/anytype-client/pkg/anytype"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Local desktop application with an API key.
//	  cli, err := anyclient.NewWithKey(ctx, "", "your-api-key")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or from ANYTYPE_URL / ANYTYPE_KEY.
//	  cli, err = anyclient.NewFromEnv(ctx)
//	  if err != nil { log.Fatal(err) }
//
//	  space, err := cli.Spaces().LookupByName(ctx, "Work")
//	  if err != nil { log.Fatal(err) }
//
//	  status, err := cli.Properties().LookupByKey(ctx, space.ID, "status")
//	  if err != nil { log.Fatal(err) }
//	  _ = status
//	}
//
// Sharing warm metadata between processes
//
//	cli, err := anyclient.NewWithBackend(ctx, &anytype.Config{APIKey: key}, &anytype.BackendConfig{
//	  Type:  anytype.BackendTypeRedis,
//	  Redis: &anytype.RedisBackendConfig{Addr: "localhost:6379"},
//	})
//
// The returned client is safe for concurrent use.
package anyclient
