package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testConfig(url string) Config {
	return Config{
		BaseURL:     url,
		APIKey:      "test-key",
		Model:       "claude-3-haiku-20240307",
		MaxTokens:   256,
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		RetryDelay:  5 * time.Millisecond,
	}
}

func successBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return string(b)
}

func TestAnalyzeSuccessAfterTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, successBody("A cat."))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	out := c.Analyze(context.Background(), []byte("jpegbytes"), "Describe this.")

	if out.Status != StatusSuccess {
		t.Fatalf("status = %v, want success (kind %v: %s)", out.Status, out.Kind, out.Message)
	}
	if out.Text != "A cat." {
		t.Errorf("text = %q", out.Text)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if out.Elapsed <= 0 {
		t.Error("elapsed should be positive")
	}
}

func TestAnalyzeExhaustsConfiguredAttempts(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxAttempts = 4
	c := NewClient(cfg)
	out := c.Analyze(context.Background(), []byte("x"), "p")

	if out.Status != StatusFailed {
		t.Fatalf("status = %v, want failed", out.Status)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want exactly 4", attempts)
	}
	if out.Kind != ErrService {
		t.Errorf("kind = %v, want service", out.Kind)
	}
}

func TestAnalyzeDoesNotRetryRejections(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	out := c.Analyze(context.Background(), []byte("x"), "p")

	if out.Status != StatusFailed || out.Kind != ErrService {
		t.Fatalf("status = %v kind = %v, want failed/service", out.Status, out.Kind)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry of a well-formed rejection)", attempts)
	}
}

func TestAnalyzeMalformedBodyIsDecodeFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "oops"},
		{"empty content list", `{"content":[]}`},
		{"missing text field", `{"content":[{"type":"text"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			c := NewClient(testConfig(server.URL))
			out := c.Analyze(context.Background(), []byte("x"), "p")

			if out.Status != StatusFailed || out.Kind != ErrDecode {
				t.Errorf("status = %v kind = %v, want failed/decode", out.Status, out.Kind)
			}
			if attempts != 1 {
				t.Errorf("attempts = %d, want 1", attempts)
			}
		})
	}
}

func TestCancelDuringRetryDelay(t *testing.T) {
	attempts := 0
	firstDone := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			defer close(firstDone)
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryDelay = 500 * time.Millisecond
	c := NewClient(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome, 1)
	go func() {
		done <- c.Analyze(ctx, []byte("x"), "p")
	}()

	<-firstDone
	cancel()

	out := <-done
	if out.Status != StatusCancelled {
		t.Fatalf("status = %v, want cancelled", out.Status)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no attempt after cancel)", attempts)
	}
}

func TestCancelMidRequest(t *testing.T) {
	inHandler := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(inHandler)
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(testConfig(server.URL))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan Outcome, 1)
	go func() {
		done <- c.Analyze(ctx, []byte("x"), "p")
	}()

	<-inHandler
	cancel()

	select {
	case out := <-done:
		if out.Status != StatusCancelled {
			t.Fatalf("status = %v, want cancelled", out.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancel did not interrupt the in-flight request")
	}
}

func TestRequestWireShape(t *testing.T) {
	var captured []byte
	var gotKey, gotVersion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		io.WriteString(w, successBody("ok"))
	}))
	defer server.Close()

	c := NewClient(testConfig(server.URL))
	image := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	out := c.Analyze(context.Background(), image, "What is this?")
	if out.Status != StatusSuccess {
		t.Fatalf("status = %v", out.Status)
	}

	if gotKey != "test-key" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != apiVersion {
		t.Errorf("anthropic-version = %q", gotVersion)
	}

	var req apiRequest
	if err := json.Unmarshal(captured, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	if req.Model != "claude-3-haiku-20240307" || req.MaxTokens != 256 {
		t.Errorf("model/max_tokens = %q/%d", req.Model, req.MaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", req.Messages)
	}
	content := req.Messages[0].Content
	if len(content) != 2 {
		t.Fatalf("content blocks = %d, want 2", len(content))
	}
	if content[0].Type != "image" || content[0].Source == nil ||
		content[0].Source.Type != "base64" || content[0].Source.MediaType != "image/jpeg" {
		t.Errorf("image block = %+v", content[0])
	}
	decoded, err := base64.StdEncoding.DecodeString(content[0].Source.Data)
	if err != nil || string(decoded) != string(image) {
		t.Errorf("image data does not round-trip: %v", err)
	}
	if content[1].Type != "text" || content[1].Text != "What is this?" {
		t.Errorf("text block = %+v", content[1])
	}
}
