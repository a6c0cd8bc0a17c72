// Package redis connects to Redis for the progress tracker's shared backend.
//
// Connect parses REDIS_URL (redis:// or rediss://), then pings the server
// with exponential backoff until it answers, RetryAttempts run out or
// ConnectTimeout passes:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	tracker, err := progress.NewRedisTrackerFromConfig(client, cfg.Progress)
//
// Healthcheck returns a readiness probe that pings the client. Failures are
// reported as ErrHealthcheckFailed; connection failures as ErrRedisNotReady,
// and a bad URL as ErrFailedToParseRedisConnString or ErrEmptyConnectionURL.
package redis
