package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Prober performs the outbound reachability call against one integration
// endpoint. Probe reports outcome as data; it never fails as an error.
type Prober interface {
	Probe(ctx context.Context, endpoint string) (ok bool, message string, took time.Duration)
}

// HTTPProber probes endpoints with a GET. No retries: a retry would distort
// the measured response time and a failed probe is retried on the next
// scheduled sweep anyway.
type HTTPProber struct {
	client *resty.Client
	logger *zap.Logger
}

func NewHTTPProber(timeout time.Duration, logger *zap.Logger) *HTTPProber {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "flowcrm-data/health-check").
		SetHeader("Accept", "application/json")

	return &HTTPProber{client: client, logger: logger}
}

func (p *HTTPProber) Probe(ctx context.Context, endpoint string) (bool, string, time.Duration) {
	start := time.Now()
	resp, err := p.client.R().SetContext(ctx).Get(endpoint)
	took := time.Since(start)

	if err != nil {
		return false, fmt.Sprintf("probe failed: %v", err), took
	}

	code := resp.StatusCode()
	if code >= 200 && code < 400 {
		return true, fmt.Sprintf("HTTP %d", code), took
	}
	return false, fmt.Sprintf("unexpected status HTTP %d", code), took
}
