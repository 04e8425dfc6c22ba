// Package base44 provides types, interfaces, and helpers for working with the
// Base44 application platform API.
//
// # Overview
//
// The base44 package defines the client-side contract: the Client interface
// with its Entities, Integrations, and Auth modules, the Config used to build
// a client, the normalized Error model every failure is converted into, and
// the capability interfaces (Storage, PageContext) that let the SDK run both
// inside page-driven hosts and in plain server or CLI processes. A concrete
// implementation is provided by the base44client package, which wires
// configuration, transport, token discovery, and the auth lifecycle.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/base44-client/pkg/base44"
//	  "github.com/fivetwenty-io/base44-client/pkg/base44client"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := base44client.New(&base44.Config{AppID: "my-app"})
//	  if err != nil { log.Fatal(err) }
//
//	  products, err := cli.Entities().Entity("Product").List(ctx, &base44.ListOptions{Limit: 5})
//	  if err != nil { log.Fatal(err) }
//	  _ = products
//	}
//
// # Dynamic entities
//
// Entity collections are not declared anywhere. Entities().Entity(name)
// returns a handle for any non-empty name; an unknown name is only reported
// by the server as a 404 at call time. The same applies to integration
// packages and endpoints.
//
// # Errors
//
// All failures surface as *base44.Error carrying an HTTP-style status, a
// symbolic code, a human message, and the raw server payload. Use the
// IsNotFound, IsAuthentication, IsAuthorization, and IsValidation helpers to
// branch on kind.
package base44
