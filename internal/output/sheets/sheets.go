// Package sheets submits processed scans to a spreadsheet endpoint, such as
// a Google Apps Script web app that appends one row per request.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hejijunhao/qrsheet/internal/model"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRetries   = 3
	defaultRetryWait = 500 * time.Millisecond
	maxRetryWait     = 5 * time.Second
	maxErrorBody     = 512

	// TimestampLayout is the millisecond-precision UTC form sent to the endpoint.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// ErrEmptyPayload is returned when a scan has no raw text to submit.
var ErrEmptyPayload = errors.New("sheets: empty payload")

// StatusError reports a non-2xx response that survived all retries.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sheets: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("sheets: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures a sheets Output.
type Option func(*Output)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(o *Output) { o.headers = h }
}

// WithTimeout sets the per-attempt HTTP timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *Output) { o.timeout = d }
}

// WithRetries sets how many times a failed POST is retried. Default: 3.
func WithRetries(n int) Option {
	return func(o *Output) { o.retries = n }
}

// WithRetryWait sets the initial backoff between retries. Default: 500ms.
func WithRetryWait(d time.Duration) Option {
	return func(o *Output) { o.retryWait = d }
}

// Output POSTs each scan to the endpoint as a single JSON object. Network
// errors, 429 and 5xx responses are retried with backoff.
type Output struct {
	client    *resty.Client
	url       string
	headers   map[string]string
	timeout   time.Duration
	retries   int
	retryWait time.Duration
}

// Submission is the request body sent for each scan.
type Submission struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Raw       string `json:"raw"`
	Data      any    `json:"data"`
}

// New creates a sheets output targeting the given URL.
func New(url string, opts ...Option) *Output {
	o := &Output{
		url:       url,
		timeout:   defaultTimeout,
		retries:   defaultRetries,
		retryWait: defaultRetryWait,
	}
	for _, opt := range opts {
		opt(o)
	}

	wait := max(o.retryWait, maxRetryWait)
	o.client = resty.New().
		SetTimeout(o.timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeaders(o.headers).
		SetRetryCount(o.retries).
		SetRetryWaitTime(o.retryWait).
		SetRetryMaxWaitTime(wait)
	o.client.AddRetryCondition(retryCondition)
	return o
}

// NewSubmission builds the request body for scan.
func NewSubmission(scan model.Scan) Submission {
	return Submission{
		ID:        scan.ID,
		Timestamp: scan.Timestamp.UTC().Format(TimestampLayout),
		Raw:       scan.Raw,
		Data:      scan.Data,
	}
}

// Write submits one scan and returns once the endpoint has accepted it or
// retries are exhausted.
func (o *Output) Write(ctx context.Context, scan model.Scan) error {
	if scan.Raw == "" {
		return ErrEmptyPayload
	}

	body, err := encode(NewSubmission(scan))
	if err != nil {
		return fmt.Errorf("sheets: marshal: %w", err)
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", scan.ID).
		SetBody(body).
		Post(o.url)
	if err != nil {
		return fmt.Errorf("sheets: %w", err)
	}
	if !resp.IsSuccess() {
		return &StatusError{StatusCode: resp.StatusCode(), Body: truncate(resp.Body())}
	}
	return nil
}

// Close releases idle connections.
func (o *Output) Close() error {
	o.client.GetClient().CloseIdleConnections()
	return nil
}

func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func truncate(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
