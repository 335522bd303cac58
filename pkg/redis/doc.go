// Package redis provides helpers for connecting to a Redis server.
//
// It wraps the go-redis client with a retrying Connect, env-driven
// configuration, and a health-check probe for readiness endpoints.
//
// # Usage
//
//	cfg := config.MustLoad[redis.Config]()
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // terminate: the application cannot run without its cache
//	}
//	defer client.Close()
//
// Sentinel errors (e.g. ErrRedisNotReady) wrap the underlying go-redis errors
// using errors.Join, so both errors.Is comparisons and unwrapping work.
package redis
