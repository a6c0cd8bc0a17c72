// Package health provides net/http handlers for liveness and readiness probes.
//
//	r.Get("/health/live", health.Liveness)
//	r.Get("/health/ready", health.Readiness(log,
//		health.Check("dispatcher", dispatcher.Healthcheck),
//		health.Check("redis", redis.Healthcheck(client)),
//	))
//
// Readiness runs every check with a shared timeout and reports each failure
// by name, so an operator sees every broken dependency at once.
package health
