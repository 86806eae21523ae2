// Package spacyd provides an analyzer provider backed by a spacyd sidecar.
//
// spacyd is a small HTTP wrapper around a pretrained spaCy pipeline. It
// exposes a single /parse endpoint that accepts a batch of texts and
// returns the full document annotations the drift pipeline needs: tokens
// with lemma, POS, tag, dependency relation and head index, named entity
// spans, noun chunks, and sentence boundaries.
//
// Example usage:
//
//	p, err := spacyd.New("", spacyd.WithTimeout(10*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc, err := p.Parse(ctx, "I prefer granite to quartz.")
//
// The sidecar loads one model per process and is not assumed to be
// re-entrant, so the client bounds in-flight requests with a weighted
// semaphore sized to the host's parallelism.
package spacyd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/driftos/driftd/pkg/provider/analyzer"
)

// DefaultBaseURL is the default base URL for a locally running spacyd.
const DefaultBaseURL = "http://localhost:8200"

// DefaultBatchSize is the number of texts sent per /parse request when the
// caller does not specify one.
const DefaultBatchSize = 50

// Ensure Client implements the analyzer.Provider interface at compile time.
var _ analyzer.Provider = (*Client)(nil)

// Client implements analyzer.Provider against a spacyd sidecar.
//
// Client is safe for concurrent use. At most maxInFlight parse requests are
// issued concurrently; additional callers block until a slot frees up or
// their context is cancelled.
type Client struct {
	baseURL    string
	httpClient *http.Client
	slots      *semaphore.Weighted
}

// config holds optional configuration collected from functional options.
type config struct {
	timeout     time.Duration
	maxInFlight int64
}

// Option is a functional option for Client.
type Option func(*config)

// WithTimeout sets a per-request HTTP timeout on the underlying HTTP client.
// A zero or negative value means no timeout (the default).
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithMaxInFlight caps the number of concurrent parse requests. The default
// is runtime.GOMAXPROCS(0).
func WithMaxInFlight(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxInFlight = int64(n)
		}
	}
}

// New constructs a new spacyd Client.
//
// baseURL is the base URL of the sidecar (e.g., "http://localhost:8200").
// If empty, DefaultBaseURL is used. A trailing slash is stripped.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	cfg := &config{maxInFlight: int64(runtime.GOMAXPROCS(0))}
	for _, o := range opts {
		o(cfg)
	}

	httpClient := &http.Client{}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		slots:      semaphore.NewWeighted(cfg.maxInFlight),
	}, nil
}

// parseRequest is the JSON request body sent to spacyd's /parse endpoint.
type parseRequest struct {
	Texts []string `json:"texts"`
}

// parseResponse is the JSON response body returned by /parse.
type parseResponse struct {
	Docs []*analyzer.Doc `json:"docs"`
}

// Parse implements analyzer.Provider for a single text.
func (c *Client) Parse(ctx context.Context, text string) (*analyzer.Doc, error) {
	docs, err := c.callParse(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("spacyd: parse: %w", err)
	}
	if len(docs) != 1 {
		return nil, fmt.Errorf("spacyd: parse: expected 1 doc, got %d", len(docs))
	}
	return docs[0], nil
}

// Pipe implements analyzer.Provider by splitting texts into batches of
// batchSize and issuing one /parse request per batch. Output order matches
// input order; on any error the whole result is discarded.
func (c *Client) Pipe(ctx context.Context, texts []string, batchSize int) ([]*analyzer.Doc, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	out := make([]*analyzer.Doc, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		docs, err := c.callParse(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("spacyd: pipe: %w", err)
		}
		if len(docs) != end-start {
			return nil, fmt.Errorf("spacyd: pipe: expected %d docs, got %d", end-start, len(docs))
		}
		out = append(out, docs...)
	}
	return out, nil
}

// callParse performs one /parse request under a worker slot.
func (c *Client) callParse(ctx context.Context, texts []string) ([]*analyzer.Doc, error) {
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.slots.Release(1)

	body, err := json.Marshal(parseRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var pr parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return pr.Docs, nil
}
