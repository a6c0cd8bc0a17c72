package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/storyforge/core/logger"
)

// DefaultTimeout bounds a readiness probe.
const DefaultTimeout = 3 * time.Second

// NamedCheck is a dependency check with a label for the report.
type NamedCheck struct {
	Name string
	Fn   func(context.Context) error
}

// Check labels fn.
func Check(name string, fn func(context.Context) error) NamedCheck {
	return NamedCheck{Name: name, Fn: fn}
}

// Report is the readiness response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Liveness reports that the process is serving requests.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, http.StatusOK, Report{Status: "alive"})
}

// Readiness runs checks concurrently and answers 503 if any fail.
func Readiness(log *slog.Logger, checks ...NamedCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), DefaultTimeout)
		defer cancel()

		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			report = Report{Status: "ready", Checks: make(map[string]string, len(checks))}
		)

		for _, c := range checks {
			if c.Fn == nil {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()

				result := "ok"
				if err := c.Fn(ctx); err != nil {
					result = err.Error()
					log.ErrorContext(ctx, "readiness check failed",
						logger.Component("health"),
						slog.String("check", c.Name),
						logger.Error(err))
				}

				mu.Lock()
				report.Checks[c.Name] = result
				if result != "ok" {
					report.Status = "unavailable"
				}
				mu.Unlock()
			}()
		}
		wg.Wait()

		status := http.StatusOK
		if report.Status != "ready" {
			status = http.StatusServiceUnavailable
		}
		writeReport(w, status, report)
	}
}

func writeReport(w http.ResponseWriter, status int, r Report) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(r)
}
