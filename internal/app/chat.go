package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultChatBaseURL = "https://api.perplexity.ai/chat/completions"
	defaultChatModel   = "sonar"
	defaultMaxTokens   = 500

	// noResponsePlaceholder stands in when a 2xx response carries no
	// assistant content in any of the known shapes.
	noResponsePlaceholder = "no response received"

	chatMaxRetries = 2
	chatBackoffMs  = 600
	chatJitterMs   = 200
)

// ChatClient talks to an OpenAI-style chat completions endpoint.
// Transient statuses (429, 503) are retried with exponential backoff
// honoring Retry-After; everything else fails terminally on the first
// attempt. The credential is passed per call; the pipeline owns it.
type ChatClient struct {
	Model     string
	BaseURL   string
	MaxTokens int
	HTTP      *http.Client

	// sleep and jitter are injectable so retry tests run instantly.
	sleep  func(time.Duration)
	jitter func() time.Duration

	// lastRetryAfter holds the Retry-After of the most recent response.
	// At most one send is in flight at a time, so a plain field is enough.
	lastRetryAfter time.Duration
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string     `json:"model"`
	Messages  []chatTurn `json:"messages"`
	MaxTokens int        `json:"max_tokens"`
}

// StatusError is a terminal non-2xx outcome, kept as a typed error so the
// pipeline can classify it into a user-facing message.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

func NewChatClient(model, baseURL string, maxTokens int) *ChatClient {
	if model == "" {
		model = defaultChatModel
	}
	if baseURL == "" {
		baseURL = defaultChatBaseURL
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &ChatClient{
		Model:     model,
		BaseURL:   baseURL,
		MaxTokens: maxTokens,
		HTTP:      &http.Client{Timeout: 60 * time.Second},
		sleep:     time.Sleep,
		jitter: func() time.Duration {
			return time.Duration(rand.Intn(chatJitterMs)) * time.Millisecond
		},
	}
}

// Complete sends the composed message list and returns the assistant
// content. Retries apply only to 429 and 503, at most chatMaxRetries
// times, with delay max(Retry-After, 600ms*2^attempt) plus jitter.
func (c *ChatClient) Complete(ctx context.Context, apiKey string, turns []chatTurn) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:     c.Model,
		Messages:  turns,
		MaxTokens: c.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	attempt := 0
	for {
		content, status, err := c.post(ctx, apiKey, payload)
		if err != nil {
			return "", err
		}
		if status < 300 {
			return content, nil
		}
		if (status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable) && attempt < chatMaxRetries {
			c.sleep(c.retryDelay(attempt, c.lastRetryAfter))
			attempt++
			continue
		}
		return "", &StatusError{Status: status}
	}
}

func (c *ChatClient) retryDelay(attempt int, retryAfter time.Duration) time.Duration {
	backoff := time.Duration(chatBackoffMs*(1<<attempt)) * time.Millisecond
	delay := backoff
	if retryAfter > delay {
		delay = retryAfter
	}
	return delay + c.jitter()
}

func (c *ChatClient) post(ctx context.Context, apiKey string, payload []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	c.lastRetryAfter = 0
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			c.lastRetryAfter = time.Duration(secs) * time.Second
		}
	}

	if resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response: %w", err)
	}
	return extractContent(body), resp.StatusCode, nil
}

// extractContent pulls choices[0].message.content out of the response,
// with a fallback path for payloads where choices is a single object
// rather than an array.
func extractContent(body []byte) string {
	var arrayForm struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &arrayForm); err == nil && len(arrayForm.Choices) > 0 {
		if content := arrayForm.Choices[0].Message.Content; content != "" {
			return content
		}
	}

	var objectForm struct {
		Choices struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &objectForm); err == nil {
		if content := objectForm.Choices.Message.Content; content != "" {
			return content
		}
	}

	return noResponsePlaceholder
}
