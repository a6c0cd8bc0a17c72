package logger

import (
	"log/slog"
	"runtime"
	"time"
)

// Helpers return an empty slog.Attr for zero inputs; slog drops those.

// Error returns the error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Duration returns d under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Command lifecycle.

// RunID returns the command run id under the key "run_id".
func RunID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("run_id", id)
}

// CommandName returns the command name under the key "command".
func CommandName(name string) slog.Attr {
	return slog.String("command", name)
}

// ThreadScope returns the command thread scope. It is empty for unscoped
// commands.
func ThreadScope(scope string) slog.Attr {
	if scope == "" {
		return slog.Attr{}
	}
	return slog.String("thread_scope", scope)
}

// Status returns a command status under the key "status".
func Status(status string) slog.Attr {
	return slog.String("status", status)
}

// RetryCount returns how many attempts have failed so far.
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Attempt returns the 1-based attempt number under the key "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Priority returns the command priority under the key "priority".
func Priority(p int) slog.Attr {
	return slog.Int("priority", p)
}

// Stories.

// StoryID returns the story id under the key "story_id".
func StoryID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("story_id", id)
}

// HTTP.

// RequestID returns the HTTP request id under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Method returns the HTTP method under the key "method".
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path returns the request path under the key "path".
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// StatusCode returns the HTTP response status under the key "status_code".
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// Generic.

// Component names the subsystem that logs the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event returns a short event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Count returns n under the given key.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Key returns value under key, or an empty Attr for a nil value.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}

// Stack captures the calling goroutine's stack, truncated at 64KiB.
func Stack() slog.Attr {
	buf := make([]byte, 64<<10)
	buf = buf[:runtime.Stack(buf, false)]
	return slog.String("stack", string(buf))
}
