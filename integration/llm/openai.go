package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI model defaults.
const (
	OpenAIDefaultTextModel   = "gpt-4o-mini"
	OpenAIDefaultSpeechModel = "gpt-4o-mini-tts"
	OpenAIDefaultVoice       = "alloy"
)

// OpenAI implements TextGenerator and SpeechSynthesizer using OpenAI's API.
type OpenAI struct {
	client      openai.Client
	textModel   string
	speechModel string
	voice       string
	reqOpts     []option.RequestOption
}

// OpenAIOption is a functional option for configuring OpenAI.
type OpenAIOption func(*OpenAI)

// WithOpenAITextModel sets the chat model used by Generate.
func WithOpenAITextModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		if model != "" {
			o.textModel = model
		}
	}
}

// WithOpenAISpeechModel sets the model used by Synthesize.
func WithOpenAISpeechModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		if model != "" {
			o.speechModel = model
		}
	}
}

// WithOpenAIVoice sets the voice used when Synthesize gets none.
func WithOpenAIVoice(voice string) OpenAIOption {
	return func(o *OpenAI) {
		if voice != "" {
			o.voice = voice
		}
	}
}

// WithOpenAIBaseURL points the client at a compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(o *OpenAI) {
		if url == "" {
			return
		}
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}
		o.reqOpts = append(o.reqOpts, option.WithBaseURL(url))
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		if client != nil {
			o.reqOpts = append(o.reqOpts, option.WithHTTPClient(client))
		}
	}
}

// WithOpenAIMaxRetries sets the SDK's own retry count for a single request.
func WithOpenAIMaxRetries(n int) OpenAIOption {
	return func(o *OpenAI) {
		if n >= 0 {
			o.reqOpts = append(o.reqOpts, option.WithMaxRetries(n))
		}
	}
}

// WithOpenAIRequestTimeout bounds each request attempt.
func WithOpenAIRequestTimeout(d time.Duration) OpenAIOption {
	return func(o *OpenAI) {
		if d > 0 {
			o.reqOpts = append(o.reqOpts, option.WithRequestTimeout(d))
		}
	}
}

// NewOpenAI creates a new OpenAI client.
func NewOpenAI(apiKey string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}

	o := &OpenAI{
		textModel:   OpenAIDefaultTextModel,
		speechModel: OpenAIDefaultSpeechModel,
		voice:       OpenAIDefaultVoice,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.client = openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, o.reqOpts...)...)

	return o, nil
}

// TextModel returns the configured chat model.
func (o *OpenAI) TextModel() string { return o.textModel }

// Generate runs a single chat completion and returns the first choice.
func (o *OpenAI) Generate(ctx context.Context, p Prompt) (string, error) {
	if strings.TrimSpace(p.User) == "" {
		return "", ErrEmptyPrompt
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if p.System != "" {
		messages = append(messages, openai.SystemMessage(p.System))
	}
	messages = append(messages, openai.UserMessage(p.User))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    openai.ChatModel(o.textModel),
	}
	if p.Temperature != nil {
		params.Temperature = openai.Float(*p.Temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", classifyOpenAI(err))
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// Synthesize converts text to MP3 audio. An empty voice uses the default.
func (o *OpenAI) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPrompt
	}
	if n := utf8.RuneCountInString(text); n > MaxSpeechInput {
		return nil, fmt.Errorf("%w: %d characters", ErrInputTooLong, n)
	}
	if voice == "" {
		voice = o.voice
	}

	resp, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(o.speechModel),
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech: %w", classifyOpenAI(err))
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech body: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyResponse
	}

	return audio, nil
}

func classifyOpenAI(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized {
			return errors.Join(ErrInvalidAPIKey, err)
		}
		if sentinel := classifyStatus(apiErr.StatusCode); sentinel != nil {
			return errors.Join(sentinel, err)
		}
	}
	return err
}

var (
	_ TextGenerator     = (*OpenAI)(nil)
	_ SpeechSynthesizer = (*OpenAI)(nil)
)
