package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sheetqa/ports"
)

// pingTimeout bounds one probe of the model endpoint
const pingTimeout = 10 * time.Second

// HealthProbe checks that the model endpoint is reachable. Successes are
// cached for ttl and concurrent checks share one request.
type HealthProbe struct {
	client ports.LLMClient
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger

	mu     sync.Mutex
	lastOK time.Time
	now    func() time.Time
}

// NewHealthProbe creates a probe over client
func NewHealthProbe(client ports.LLMClient, ttl time.Duration, logger *slog.Logger) *HealthProbe {
	return &HealthProbe{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "health_probe"),
		now:    time.Now,
	}
}

// Check returns nil when the endpoint answered within the cache window
func (p *HealthProbe) Check(ctx context.Context) error {
	p.mu.Lock()
	if !p.lastOK.IsZero() && p.now().Sub(p.lastOK) < p.ttl {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	_, err, _ := p.group.Do("ping", func() (any, error) {
		// Joiners share this ping, so one caller going away must not fail
		// the others
		pingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pingTimeout)
		defer cancel()
		if err := p.client.Ping(pingCtx); err != nil {
			p.logger.Warn("model endpoint unreachable", "error", err)
			return nil, err
		}
		p.mu.Lock()
		p.lastOK = p.now()
		p.mu.Unlock()
		return nil, nil
	})
	return err
}

// Invalidate drops the cached success, e.g. after a failed model call
func (p *HealthProbe) Invalidate() {
	p.mu.Lock()
	p.lastOK = time.Time{}
	p.mu.Unlock()
}
