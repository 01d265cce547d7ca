// pkg/ai/openai_client.go

package ai

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"nolabor/pkg/logger"
)

const (
	maxAttempts    = 3
	connectTimeout = 45 * time.Second
	readTimeout    = 150 * time.Second
)

type openAI struct {
	endpoint string
	key      string
	log      *logger.Logger

	// backoff between attempts; overridable in tests
	backoff []time.Duration
}

func NewOpenAI(endpoint, key string, log *logger.Logger) Client {
	return &openAI{
		endpoint: strings.TrimRight(endpoint, "/"),
		key:      key,
		log:      log,
		backoff:  []time.Duration{2 * time.Second, 4 * time.Second},
	}
}

// GeneratePlan runs up to three attempts against the chat completions
// endpoint in strict JSON-object mode. Only transport-class faults are
// retried; each retry builds a fresh client with keep-alive disabled so a
// stuck upstream connection is never reused.
func (c *openAI) GeneratePlan(ctx context.Context, system, user, assistant string, p ModelParams) ([]byte, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.ModelName,
		Temperature: float32(p.Temperature),
		MaxTokens:   p.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
			{Role: openai.ChatMessageRoleAssistant, Content: assistant},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			c.log.Warn("llm retry", "attempt", attempt+1, "err", lastErr)
			select {
			case <-time.After(c.backoff[min(attempt-1, len(c.backoff)-1)]):
			case <-ctx.Done():
				return nil, &TransportError{Err: ctx.Err()}
			}
		}

		client := c.newClient(p, attempt > 0)
		resp, err := client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = classify(err)
			if IsTransport(lastErr) {
				continue
			}
			return nil, lastErr
		}

		if len(resp.Choices) == 0 {
			return nil, ErrEmptyContent
		}
		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return nil, ErrEmptyContent
		}
		c.log.Info("llm ok", "model", p.ModelName, "attempt", attempt+1, "len", len(content))
		return []byte(content), nil
	}
	return nil, lastErr
}

// newClient builds a go-openai client over its own connection state.
// freshConn additionally disables keep-alives to sidestep a stuck upstream
// socket on retry.
func (c *openAI) newClient(p ModelParams, freshConn bool) *openai.Client {
	connect := connectBudget(p)
	dialer := &net.Dialer{Timeout: connect}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: readTimeout,
		DisableKeepAlives:     freshConn,
	}
	cfg := openai.DefaultConfig(c.key)
	if c.endpoint != "" {
		cfg.BaseURL = c.endpoint
	}
	cfg.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   connect + readTimeout,
	}
	return openai.NewClientWithConfig(cfg)
}

// connectBudget is the per-attempt dial budget, taken from the per-site
// model config when set.
func connectBudget(p ModelParams) time.Duration {
	if p.TimeoutSec > 0 {
		return time.Duration(p.TimeoutSec) * time.Second
	}
	return connectTimeout
}

// classify splits provider errors (never retried) from transport faults.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return err
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EPIPE):
		return &TransportError{Err: err}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &TransportError{Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// url.Error with no HTTP status means the request never completed
		return &TransportError{Err: err}
	}
	if strings.Contains(err.Error(), "connection reset") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "EOF") {
		return &TransportError{Err: err}
	}
	return err
}
