package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coursekit/internal/logger"
)

const (
	generatePath = "/api/generate"
	resourcePath = "/api/generate-resource"

	defaultTimeout    = 120 * time.Second
	defaultMaxRetries = 2
)

type Config struct {
	// GenerationURL is the base URL of the content-generation service.
	GenerationURL string
	// ResourceURL is the base URL of the resource-generation service; defaults to GenerationURL.
	ResourceURL string
	APIKey      string
	TeacherID   string

	Timeout time.Duration
	// MaxRetries of 0 uses the default; negative disables retries.
	MaxRetries int
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Client talks to the content- and resource-generation collaborators.
type Client struct {
	log           *logger.Logger
	generationURL string
	resourceURL   string
	apiKey        string
	teacherID     string
	httpClient    *http.Client
	maxRetries    int
	backoff       time.Duration
}

func New(cfg Config) (*Client, error) {
	genURL := strings.TrimRight(strings.TrimSpace(cfg.GenerationURL), "/")
	resURL := strings.TrimRight(strings.TrimSpace(cfg.ResourceURL), "/")
	if genURL == "" && resURL == "" {
		return nil, errors.New("missing generation url (set COURSEKIT_GENERATION_URL or generationUrl in config)")
	}
	if resURL == "" {
		resURL = genURL
	}
	if genURL == "" {
		genURL = resURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	} else if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		log:           log,
		generationURL: genURL,
		resourceURL:   resURL,
		apiKey:        strings.TrimSpace(cfg.APIKey),
		teacherID:     strings.TrimSpace(cfg.TeacherID),
		httpClient:    hc,
		maxRetries:    maxRetries,
		backoff:       500 * time.Millisecond,
	}, nil
}

func (c *Client) doOnce(ctx context.Context, url string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return resp, raw, nil
}

// post sends body and returns the raw 2xx response, retrying timeouts, 408, 429 and 5xx.
func (c *Client) post(ctx context.Context, url string, body any) ([]byte, error) {
	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, raw, err := c.doOnce(ctx, url, body)
		if err == nil {
			return raw, nil
		}
		if attempt >= c.maxRetries || !isRetryable(err) {
			return nil, err
		}

		sleepFor := retryAfter(resp, backoff, 10*time.Second)
		c.log.Warn("generate: request retrying",
			"url", url,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		t := time.NewTimer(sleepFor)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		backoff *= 2
	}
}

func retryAfter(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

// failure builds the error for a success:false answer.
func failure(msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return ErrGenerationFailed
	}
	return fmt.Errorf("%w: %s", ErrGenerationFailed, msg)
}
