// Package mcsrvstat is a client for the Minecraft Server Status API
// (https://api.mcsrvstat.us).
//
// # Overview
//
// The package resolves the live status of a Java- or Bedrock-edition
// Minecraft server by address. Upstream responses are normalized into the
// stable [ServerStatus] model, cached for a short TTL, and concurrent
// lookups of the same server collapse into a single upstream request.
//
// # Usage
//
//	client := mcsrvstat.New()
//	defer client.Close()
//
//	status, err := client.GetJavaStatus(ctx, "play.example.com", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if status.Online {
//	    fmt.Println(status.Players.Online, "players online")
//	}
//
// # Failure kinds
//
// Lookups fail with exactly one of three error codes from pkg/errors:
// INVALID_QUERY (bad host/port, raised before any I/O),
// UPSTREAM_UNAVAILABLE (network failure or upstream 5xx after the retry
// budget), or MALFORMED_RESPONSE (2xx with an invalid body). There is no
// silent fallback to stale data.
//
// # Caching
//
// Results are cached per (edition, host, port) for the configured TTL,
// 10 seconds by default. The backend is pluggable via [WithCache]; see
// pkg/cache for the memory, file and Redis implementations. Lookup
// failures are never cached.
package mcsrvstat
