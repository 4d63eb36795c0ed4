// Package vision sends captured images to the remote analysis service and
// returns the response text as a tagged Outcome.
//
// The wire contract is a JSON POST: model, max_tokens, and one user message
// whose content is a base64 JPEG block followed by the prompt text. The
// analysis text is read from content[0].text of the response body.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const apiVersion = "2023-06-01"

// Config carries the transport parameters, already validated at startup.
type Config struct {
	BaseURL     string // e.g. https://api.anthropic.com/v1/messages
	APIKey      string
	Model       string
	MaxTokens   int
	Timeout     time.Duration // per attempt
	MaxAttempts int           // total attempts including the first
	RetryDelay  time.Duration // flat delay between attempts
}

// Client performs analysis requests. It touches nothing but the network;
// persistence and display belong to the caller.
type Client struct {
	cfg   Config
	httpc *http.Client
}

// NewClient builds a client over the default transport. The per-attempt
// timeout lives on the request context, not the http.Client, so a cancelled
// context interrupts an attempt immediately.
func NewClient(cfg Config) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Client{cfg: cfg, httpc: &http.Client{}}
}

// kindError carries the failure classification through the retry loop.
type kindError struct {
	kind ErrKind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

// Analyze sends the image and prompt text, retrying transient failures on a
// flat interval. Cancelling ctx from another goroutine abandons the in-flight
// attempt or the retry delay and yields a Cancelled outcome.
func (c *Client) Analyze(ctx context.Context, imageData []byte, promptText string) Outcome {
	start := time.Now()

	body, err := buildRequestBody(c.cfg.Model, c.cfg.MaxTokens, imageData, promptText)
	if err != nil {
		return Outcome{
			Status:  StatusFailed,
			Elapsed: time.Since(start),
			Kind:    ErrDecode,
			Message: "could not encode request",
		}
	}

	var text string
	attempt := func() error {
		t, err := c.doAttempt(ctx, body)
		if err != nil {
			return err
		}
		text = t
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryDelay), uint64(c.cfg.MaxAttempts-1)),
		ctx,
	)
	err = backoff.Retry(attempt, policy)
	elapsed := time.Since(start)

	if err == nil {
		return Outcome{Status: StatusSuccess, Text: text, Elapsed: elapsed}
	}
	if errors.Is(err, context.Canceled) {
		return Outcome{Status: StatusCancelled, Elapsed: elapsed}
	}

	kind, msg := ErrNetwork, "network error"
	var ke *kindError
	if errors.As(err, &ke) {
		kind = ke.kind
		switch kind {
		case ErrService:
			msg = "service rejected the request"
		case ErrDecode:
			msg = "unexpected service response"
		}
	}
	return Outcome{Status: StatusFailed, Elapsed: elapsed, Kind: kind, Message: msg}
}

// doAttempt performs one HTTP exchange. Returned errors are retryable unless
// wrapped in backoff.Permanent.
func (c *Client) doAttempt(ctx context.Context, body []byte) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(&kindError{ErrNetwork, err})
	}
	req.Header.Set("x-api-key", c.cfg.APIKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// The caller cancelled mid-request; stop retrying.
			return "", backoff.Permanent(ctx.Err())
		}
		return "", &kindError{ErrNetwork, fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to parsing
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		return "", &kindError{ErrService, fmt.Errorf("server error: status %d", resp.StatusCode)}
	default:
		// A well-formed rejection will not change on retry.
		io.Copy(io.Discard, resp.Body)
		return "", backoff.Permanent(&kindError{ErrService, fmt.Errorf("client error: status %d", resp.StatusCode)})
	}

	text, err := extractText(resp.Body)
	if err != nil {
		return "", backoff.Permanent(&kindError{ErrDecode, err})
	}
	return text, nil
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Source *imageSource `json:"source,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type apiRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

// buildRequestBody assembles the wire payload. The base64 copy of the image
// lives only inside this call; once the JSON body exists the intermediate is
// released, keeping at most one extra full copy of the image alive at a time.
func buildRequestBody(model string, maxTokens int, imageData []byte, promptText string) ([]byte, error) {
	req := apiRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: "image/jpeg",
						Data:      base64.StdEncoding.EncodeToString(imageData),
					},
				},
				{Type: "text", Text: promptText},
			},
		}},
	}
	return json.Marshal(&req)
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// extractText reads the analysis text from the first content block.
func extractText(r io.Reader) (string, error) {
	var parsed apiResponse
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return "", fmt.Errorf("malformed response body: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", errors.New("response has no content blocks")
	}
	text := parsed.Content[0].Text
	if strings.TrimSpace(text) == "" {
		return "", errors.New("response content has no text")
	}
	return text, nil
}
