// Package client implements the HTTP client for a Crawl4AI-compatible
// crawling service: job submission, task polling, and the typed response
// model.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/crawl4ai-client/internal/metrics"
)

// maxResponseBytes caps how much of a response body is read. Crawled pages
// can be large, but unbounded reads are worse.
const maxResponseBytes = 16 << 20

// Connection pooling limits; this client talks to a single host.
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 4
	defaultIdleConnTimeout     = 60 * time.Second
)

// Config controls Client behavior.
type Config struct {
	// BaseURL is the root of the crawl service, e.g. "http://localhost:11235".
	BaseURL string

	// APIToken, when set, is sent as a bearer token on every request.
	APIToken string

	// PollInterval is the pause between task-status polls. Zero means the
	// 2-second default the service documentation assumes.
	PollInterval time.Duration

	// MaxWait bounds the total time WaitForTask spends on one task. Zero
	// means unbounded: a task that never leaves "running" blocks forever,
	// matching the service's reference client.
	MaxWait time.Duration

	// Timeout applies per HTTP request. Zero disables it.
	Timeout time.Duration
}

// Client submits crawl jobs and retrieves their results.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New constructs a Client. A nil logger is replaced with a no-op one.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	metrics.Init()
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			// No global timeout; per-request deadlines come from contexts.
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		logger: logger,
	}
}

// Submit sends one crawl job to POST {base}/crawl. The response is either
// immediate (inline results) or deferred (a task id to poll); a 200 carrying
// neither is a *ProtocolError, any non-200 a *SubmissionError.
func (c *Client) Submit(ctx context.Context, req CrawlRequest) (*SubmitResponse, error) {
	if len(req.URLs) == 0 {
		return nil, fmt.Errorf("at least one URL required")
	}
	if req.Priority == 0 {
		req.Priority = DefaultPriority
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode crawl request: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/crawl", payload)
	if err != nil {
		metrics.ObserveSubmission("transport_error")
		return nil, err
	}
	if status != http.StatusOK {
		metrics.ObserveSubmission("rejected")
		return nil, &SubmissionError{StatusCode: status, Body: body}
	}

	var resp SubmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.ObserveSubmission("decode_error")
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	if !resp.Immediate() && resp.TaskID == "" {
		metrics.ObserveSubmission("protocol_error")
		return nil, &ProtocolError{Body: body}
	}

	if resp.Immediate() {
		metrics.ObserveSubmission("immediate")
		c.logger.Info("crawl completed synchronously",
			zap.Int("urls", len(req.URLs)),
			zap.Int("results", len(resp.Results)),
		)
	} else {
		metrics.ObserveSubmission("deferred")
		c.logger.Info("crawl job queued",
			zap.Int("urls", len(req.URLs)),
			zap.String("task_id", resp.TaskID),
		)
	}
	return &resp, nil
}

// Poll fetches the current status of a task with a single GET. Non-200
// responses become *PollError.
func (c *Client) Poll(ctx context.Context, taskID string) (*TaskStatus, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.cfg.BaseURL+"/task/"+taskID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &PollError{StatusCode: status, Body: body}
	}
	ts := &TaskStatus{Raw: body}
	if err := json.Unmarshal(body, ts); err != nil {
		return nil, fmt.Errorf("decode task status: %w", err)
	}
	metrics.ObservePoll(ts.Status)
	return ts, nil
}

// WaitForTask polls a task until it terminates. While the task reports
// "running" the loop pauses for the configured interval, cooperating with
// context cancellation; "completed" yields the results (possibly empty), any
// other status stops immediately with a *TaskFailure, and a failed poll
// stops with that poll's error. With Config.MaxWait unset the loop is
// unbounded.
//
// progress, when non-nil, is invoked after each non-terminal poll; the CLI
// uses it to print liveness lines.
func (c *Client) WaitForTask(ctx context.Context, taskID string, progress func(*TaskStatus)) ([]CrawlResult, error) {
	if c.cfg.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.MaxWait)
		defer cancel()
	}

	start := time.Now()
	for {
		ts, err := c.Poll(ctx, taskID)
		if err != nil {
			return nil, err
		}
		switch ts.Status {
		case TaskStatusCompleted:
			metrics.ObserveTaskWait(time.Since(start))
			c.logger.Info("task completed",
				zap.String("task_id", taskID),
				zap.Int("results", len(ts.Results)),
				zap.Duration("waited", time.Since(start)),
			)
			return ts.Results, nil
		case TaskStatusRunning:
			if progress != nil {
				progress(ts)
			}
			c.logger.Debug("task still running", zap.String("task_id", taskID))
			if err := sleep(ctx, c.cfg.PollInterval); err != nil {
				return nil, err
			}
		default:
			metrics.ObserveTaskWait(time.Since(start))
			return nil, &TaskFailure{Status: ts.Status, Raw: ts.Raw}
		}
	}
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) (int, []byte, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build %s %s: %w", method, url, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response from %s: %w", url, err)
	}
	return resp.StatusCode, data, nil
}

// sleep blocks for d or until the context finishes.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
