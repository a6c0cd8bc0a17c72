package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
)

var (
	// ErrInvalidAPIKey indicates an invalid or missing API key.
	ErrInvalidAPIKey = errors.New("invalid or missing API key")

	// ErrEmptyPrompt is returned when there is nothing to send.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrEmptyResponse is returned when the model produced no content.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrRateLimited wraps upstream 429 responses.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrUpstreamUnavailable wraps upstream 5xx responses and request timeouts.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUnsupportedProvider is returned by New for an unknown provider name.
	ErrUnsupportedProvider = errors.New("unsupported llm provider")

	// ErrInputTooLong is returned when text exceeds MaxSpeechInput characters.
	ErrInputTooLong = errors.New("input exceeds speech length limit")
)

// MaxSpeechInput is the longest text, in characters, one Synthesize call
// accepts. Longer narrations must be split by the caller.
const MaxSpeechInput = 4096

// Prompt is a single-turn request.
type Prompt struct {
	System string
	User   string
	// Temperature overrides the provider default when non-nil.
	Temperature *float64
}

// TextGenerator produces text from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// SpeechSynthesizer turns text into encoded audio. Implementations accept at
// most MaxSpeechInput characters per call.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamUnavailable) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classifyStatus maps an HTTP status to a transient sentinel, or nil.
func classifyStatus(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code == http.StatusRequestTimeout, code >= http.StatusInternalServerError:
		return ErrUpstreamUnavailable
	default:
		return nil
	}
}
