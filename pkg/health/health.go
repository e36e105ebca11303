package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ospreyhq/osprey-cli/pkg/types"
)

const (
	// defaultInterval is the pause between readiness probes
	defaultInterval = 100 * time.Millisecond

	// defaultTimeout bounds a single probe request
	defaultTimeout = 2 * time.Second
)

// Probe polls a dev server readiness endpoint. The start command gates
// launching the runtime on it so the first manifest request cannot race
// the server coming up.
type Probe struct {
	client   *http.Client
	interval time.Duration
	log      types.Logger
}

// NewProbe creates a readiness probe
func NewProbe(log types.Logger) *Probe {
	return &Probe{
		client:   &http.Client{Timeout: defaultTimeout},
		interval: defaultInterval,
		log:      log,
	}
}

// Check performs a single readiness probe against url
func (p *Probe) Check(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.WrapError(err, "building readiness request")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return types.WrapError(err, "readiness probe failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("readiness probe returned status %d", resp.StatusCode)
	}
	return nil
}

// WaitReady polls url until it answers or the context expires
func (p *Probe) WaitReady(ctx context.Context, url string) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Check(ctx, url); err == nil {
			p.log.Debug("server ready", "url", url)
			return nil
		}

		select {
		case <-ctx.Done():
			return types.WrapError(ctx.Err(), "server never became ready at "+url)
		case <-ticker.C:
		}
	}
}
