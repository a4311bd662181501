// Package redis opens the go-redis client that backs the shared PKCE
// verifier store.
//
// Open parses a redis:// or rediss:// URL, applies pool and timeout settings
// from Config and retries PING with linear backoff, so the login server can
// start alongside a Redis container that is still booting. Healthcheck wraps
// PING for the /healthz endpoint.
//
//	client, err := redis.Open(ctx, redis.Config{URL: "redis://localhost:6379/0", ConnectTries: 5})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := oauth.NewRedisVerifierStore(client)
package redis
