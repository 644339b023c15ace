// Package monitor runs recurring HTTP health checks against registered
// endpoints, tracks consecutive failures and alerts when an endpoint
// crosses the failure threshold.
package monitor

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/reportdeck/internal/models"
)

const (
	checkTimeout        = 3 * time.Second
	minCheckInterval    = time.Minute
	maxConcurrentChecks = 10
	// startupSweepRate paces the initial check of every endpoint at boot.
	startupSweepRate = 5 // checks per second
)

type Store interface {
	GetActiveMonitoredEndpoints(ctx context.Context) ([]models.MonitoredEndpoint, error)
	GetMonitoredEndpointByID(ctx context.Context, id uint) (*models.MonitoredEndpoint, error)
	UpdateMonitoredEndpoint(ctx context.Context, id uint, patch map[string]any) error
	CreateEndpointCheck(ctx context.Context, check *models.EndpointCheck) error
}

// Alerter receives threshold crossings and recoveries.
type Alerter interface {
	EndpointDown(ep *models.MonitoredEndpoint, failures int, detail string)
	EndpointRecovered(ep *models.MonitoredEndpoint)
}

type Monitor struct {
	store   Store
	alerts  Alerter
	client  *http.Client
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[uint]cron.EntryID
	sem     *semaphore.Weighted
	log     zerolog.Logger

	failureThreshold int
}

func New(store Store, alerts Alerter, failureThreshold int, log zerolog.Logger) *Monitor {
	if failureThreshold <= 0 {
		failureThreshold = 2
	}
	return &Monitor{
		store:            store,
		alerts:           alerts,
		client:           &http.Client{Timeout: checkTimeout},
		cron:             cron.New(),
		entries:          make(map[uint]cron.EntryID),
		sem:              semaphore.NewWeighted(maxConcurrentChecks),
		log:              log.With().Str("component", "endpoint-monitor").Logger(),
		failureThreshold: failureThreshold,
	}
}

// Start loads every active endpoint, registers its recurring check and
// kicks off a paced initial sweep.
func (m *Monitor) Start(ctx context.Context) error {
	endpoints, err := m.store.GetActiveMonitoredEndpoints(ctx)
	if err != nil {
		return fmt.Errorf("failed to load monitored endpoints: %v", err)
	}

	for i := range endpoints {
		m.register(&endpoints[i])
	}
	m.cron.Start()

	go m.initialSweep(ctx, endpoints)

	m.log.Info().Int("endpoints", len(endpoints)).Msg("endpoint monitor started")
	return nil
}

// Stop cancels all recurring checks; in-flight checks run to completion.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

// Upsert reconciles the trigger for a created or updated endpoint.
func (m *Monitor) Upsert(ep *models.MonitoredEndpoint) {
	m.Remove(ep.ID)
	if ep.IsActive {
		m.register(ep)
	}
}

// Remove cancels the endpoint's trigger. Idempotent.
func (m *Monitor) Remove(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entryID, ok := m.entries[id]; ok {
		m.cron.Remove(entryID)
		delete(m.entries, id)
	}
}

// ListActive returns ids of endpoints with a live trigger.
func (m *Monitor) ListActive() []uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uint, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	return ids
}

// TestNow runs one check immediately, settling counters the same way a
// scheduled check would.
func (m *Monitor) TestNow(ctx context.Context, id uint) (*models.EndpointCheck, error) {
	ep, err := m.store.GetMonitoredEndpointByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.runCheck(ctx, ep), nil
}

func (m *Monitor) register(ep *models.MonitoredEndpoint) {
	interval := time.Duration(ep.CheckInterval) * time.Second
	if interval < minCheckInterval {
		interval = minCheckInterval
	}

	id := ep.ID
	entryID, err := m.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*checkTimeout)
		defer cancel()

		current, err := m.store.GetMonitoredEndpointByID(ctx, id)
		if err != nil {
			m.log.Error().Uint("endpoint_id", id).Err(err).Msg("check fired for unloadable endpoint")
			return
		}
		if !current.IsActive {
			return
		}
		m.runCheck(ctx, current)
	})
	if err != nil {
		m.log.Error().Uint("endpoint_id", id).Err(err).Msg("failed to register endpoint check")
		return
	}

	m.mu.Lock()
	m.entries[id] = entryID
	m.mu.Unlock()
}

func (m *Monitor) initialSweep(ctx context.Context, endpoints []models.MonitoredEndpoint) {
	limiter := rate.NewLimiter(rate.Limit(startupSweepRate), 1)
	for i := range endpoints {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		m.runCheck(ctx, &endpoints[i])
	}
}

func (m *Monitor) runCheck(ctx context.Context, ep *models.MonitoredEndpoint) *models.EndpointCheck {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil
	}
	defer m.sem.Release(1)

	status, elapsed, probeErr := m.probe(ctx, ep)
	return m.settle(ctx, ep, status, elapsed, probeErr)
}

func (m *Monitor) probe(ctx context.Context, ep *models.MonitoredEndpoint) (int, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	method := ep.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, ep.URL, nil)
	if err != nil {
		return 0, 0, err
	}

	start := time.Now()
	resp, err := m.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return 0, elapsed, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, elapsed, nil
}

func (m *Monitor) settle(ctx context.Context, ep *models.MonitoredEndpoint, status int, elapsed time.Duration, probeErr error) *models.EndpointCheck {
	success := probeErr == nil && ep.StatusExpected(status)
	now := time.Now().UTC()

	check := &models.EndpointCheck{
		EndpointID:   ep.ID,
		StatusCode:   status,
		ResponseTime: elapsed.Milliseconds(),
		Success:      success,
		CheckedAt:    now,
	}
	if probeErr != nil {
		check.Error = probeErr.Error()
	} else if !success {
		check.Error = fmt.Sprintf("unexpected status %d", status)
	}
	if err := m.store.CreateEndpointCheck(ctx, check); err != nil {
		m.log.Error().Uint("endpoint_id", ep.ID).Err(err).Msg("failed to persist endpoint check")
	}

	patch := map[string]any{
		"last_status":        status,
		"last_response_time": check.ResponseTime,
	}

	if success {
		wasAlerting := ep.ConsecutiveFailures >= m.failureThreshold
		patch["consecutive_failures"] = 0
		patch["last_success_at"] = now
		ep.ConsecutiveFailures = 0
		ep.LastStatus = status
		if wasAlerting {
			m.alerts.EndpointRecovered(ep)
		}
	} else {
		failures := ep.ConsecutiveFailures + 1
		patch["consecutive_failures"] = failures
		patch["last_failure_at"] = now
		ep.ConsecutiveFailures = failures
		ep.LastStatus = status

		m.log.Warn().
			Uint("endpoint_id", ep.ID).
			Str("url", ep.URL).
			Int("status", status).
			Int("failures", failures).
			Msg("endpoint check failed")

		// Alert only on the crossing transition, not on every failure
		// past the threshold.
		if failures == m.failureThreshold {
			m.alerts.EndpointDown(ep, failures, check.Error)
		}
	}

	if err := m.store.UpdateMonitoredEndpoint(ctx, ep.ID, patch); err != nil {
		m.log.Error().Uint("endpoint_id", ep.ID).Err(err).Msg("failed to persist endpoint state")
	}

	return check
}
