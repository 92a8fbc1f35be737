package safetrack

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/metrics"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

const (
	DefaultPollInterval      = 5 * time.Second
	DefaultFreshnessInterval = 2 * time.Second
	DefaultStaleAfter        = 10 * time.Second
)

type PollerOptions struct {
	Interval          time.Duration
	FreshnessInterval time.Duration
	// StaleAfter forces a poll from the freshness timer once the last
	// successful update is older than this.
	StaleAfter time.Duration
	Now        func() time.Time
}

type PollSnapshot struct {
	Readings   []models.DeviceReading `json:"readings"`
	NewAlerts  []models.AlertRecord   `json:"newAlerts"`
	LastUpdate time.Time              `json:"lastUpdate"`
	LastError  string                 `json:"lastError,omitempty"`
	Running    bool                   `json:"autoRefresh"`
}

// Poller drives fetch and detection from two timers that always start and
// stop together. Poll cycles never overlap.
type Poller struct {
	telemetry ITelemetry
	detector  IDetector
	opts      PollerOptions
	logger    *zap.Logger

	pollMu sync.Mutex

	mu         sync.RWMutex
	readings   []models.DeviceReading
	newAlerts  []models.AlertRecord
	lastUpdate time.Time
	lastErr    error

	runMu  sync.Mutex
	parent context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(telemetry ITelemetry, detector IDetector, opts PollerOptions) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.FreshnessInterval <= 0 {
		opts.FreshnessInterval = DefaultFreshnessInterval
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Poller{
		telemetry: telemetry,
		detector:  detector,
		opts:      opts,
		logger:    common.GetCoreLogger(common.LoggerCategoryPoller),
		readings:  []models.DeviceReading{},
		newAlerts: []models.AlertRecord{},
	}
}

// Start begins auto-refresh under ctx. Cancelling ctx stops both timers.
func (p *Poller) Start(ctx context.Context) {
	p.runMu.Lock()
	p.parent = ctx
	p.runMu.Unlock()
	p.SetAutoRefresh(true)
}

// SetAutoRefresh starts or stops both timers. Turning it off waits for the
// loop to exit.
func (p *Poller) SetAutoRefresh(on bool) {
	if !on {
		p.Stop()
		return
	}

	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return
	}
	parent := p.parent
	if parent == nil {
		parent = context.Background()
	}
	if parent.Err() != nil {
		p.logger.Warn("Auto-refresh not started, poller context is done", zap.Error(parent.Err()))
		return
	}
	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
	p.logger.Info("Auto-refresh started", zap.Duration("interval", p.opts.Interval))
}

func (p *Poller) Stop() {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("Auto-refresh stopped")
}

func (p *Poller) Running() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	pollTicker := time.NewTicker(p.opts.Interval)
	defer pollTicker.Stop()
	freshTicker := time.NewTicker(p.opts.FreshnessInterval)
	defer freshTicker.Stop()

	p.tryPoll(ctx)

	for {
		select {
		case <-ctx.Done():
			p.release(done)
			return
		case <-pollTicker.C:
			p.tryPoll(ctx)
		case <-freshTicker.C:
			if p.stale() {
				p.logger.Debug("Data stale, forcing refresh")
				p.tryPoll(ctx)
			}
		}
	}
}

// release clears the run state when the loop ends on its own because the
// Start context was cancelled. After Stop it is a no-op.
func (p *Poller) release(done chan struct{}) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.done != done {
		return
	}
	p.cancel()
	p.cancel, p.done = nil, nil
	p.logger.Info("Auto-refresh stopped, poller context done")
}

func (p *Poller) stale() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastUpdate.IsZero() || p.opts.Now().Sub(p.lastUpdate) > p.opts.StaleAfter
}

// tryPoll skips the tick when a cycle is already in flight.
func (p *Poller) tryPoll(ctx context.Context) {
	if !p.pollMu.TryLock() {
		return
	}
	defer p.pollMu.Unlock()
	_ = p.poll(ctx)
}

// PollOnce runs one fetch and detection cycle, waiting for any cycle in
// flight to finish first.
func (p *Poller) PollOnce(ctx context.Context) error {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()
	return p.poll(ctx)
}

func (p *Poller) poll(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.PollDuration.Observe(time.Since(start).Seconds()) }()

	readings, err := p.telemetry.Fetch(ctx)
	if err != nil {
		metrics.Polls.WithLabelValues("failed").Inc()
		p.logger.Warn("Failed to fetch telemetry, keeping last good data", zap.Error(err))
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return err
	}

	created := p.detector.Evaluate(readings)

	p.mu.Lock()
	p.readings = readings
	p.newAlerts = created
	p.lastUpdate = p.opts.Now()
	p.lastErr = nil
	p.mu.Unlock()

	metrics.Polls.WithLabelValues("ok").Inc()
	p.logger.Debug("Poll completed", zap.Int("readings", len(readings)), zap.Int("newAlerts", len(created)))
	return nil
}

func (p *Poller) Snapshot() PollSnapshot {
	p.mu.RLock()
	snapshot := PollSnapshot{
		Readings:   p.readings,
		NewAlerts:  p.newAlerts,
		LastUpdate: p.lastUpdate,
	}
	if p.lastErr != nil {
		snapshot.LastError = p.lastErr.Error()
	}
	p.mu.RUnlock()
	snapshot.Running = p.Running()
	return snapshot
}
