package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/kv"
	"liyu1981.xyz/safetrack-monitor-service/pkg/metrics"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

const (
	DefaultTimeout          = 10 * time.Second
	DefaultCacheTTL         = 3 * time.Second
	DefaultHistoryPerDevice = 100
)

type Options struct {
	URL              string
	Timeout          time.Duration
	CacheTTL         time.Duration
	HistoryPerDevice int
	Client           *http.Client
	Now              func() time.Time
}

// Fetcher reads device snapshots from the remote endpoint through a
// short-lived cache kept in the shared store, and accumulates per-device
// history for trend views and alert replay.
type Fetcher struct {
	store  kv.Store
	opts   Options
	logger *zap.Logger
}

func NewFetcher(store kv.Store, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.HistoryPerDevice <= 0 {
		opts.HistoryPerDevice = DefaultHistoryPerDevice
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Fetcher{
		store:  store,
		opts:   opts,
		logger: common.GetCoreLogger(common.LoggerCategoryTelemetry),
	}
}

// Fetch returns the cached snapshot when it is younger than the cache TTL,
// otherwise requests the endpoint. A failed request returns an error and
// leaves the cache and history untouched.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.DeviceReading, error) {
	if cached, ok := f.Latest(); ok && f.opts.Now().Sub(time.UnixMilli(cached.Timestamp)) < f.opts.CacheTTL {
		metrics.TelemetryCacheHits.Inc()
		return cached.Data, nil
	}
	metrics.TelemetryCacheMisses.Inc()

	readings, err := f.request(ctx)
	if err != nil {
		f.logger.Warn("Failed to fetch telemetry", zap.Error(err))
		return nil, err
	}

	now := f.opts.Now()
	f.writeCache(models.DeviceCache{
		Data:       readings,
		Timestamp:  now.UnixMilli(),
		LastUpdate: now.UTC().Format(time.RFC3339Nano),
	})
	f.appendHistory(readings)

	return readings, nil
}

func (f *Fetcher) request(ctx context.Context) ([]models.DeviceReading, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.opts.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("request telemetry: timed out after %s: %w", f.opts.Timeout, err)
		}
		return nil, fmt.Errorf("request telemetry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read telemetry body: %w", err)
	}

	readings, rejected, err := ParsePayload(body)
	if err != nil {
		return nil, err
	}

	for _, rejection := range rejected {
		var parseErr *ParseError
		if errors.As(rejection, &parseErr) {
			metrics.ReadingsDiscarded.WithLabelValues(string(parseErr.Reason)).Inc()
		}
		f.logger.Debug("Discarded telemetry record", zap.Error(rejection))
	}

	f.logger.Info("Fetched telemetry",
		zap.Int("accepted", len(readings)),
		zap.Int("discarded", len(rejected)),
	)

	return readings, nil
}

// Latest returns the last cached snapshot regardless of its age, so callers
// can keep showing the last good data after a failed fetch.
func (f *Fetcher) Latest() (models.DeviceCache, bool) {
	raw, ok, err := f.store.Get(common.StorageKeyDeviceData)
	if err != nil || !ok {
		return models.DeviceCache{}, false
	}
	var cached models.DeviceCache
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		f.logger.Warn("Corrupt telemetry cache ignored", zap.Error(err))
		return models.DeviceCache{}, false
	}
	return cached, true
}

func (f *Fetcher) writeCache(entry models.DeviceCache) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := f.store.Set(common.StorageKeyDeviceData, string(data)); err != nil {
		metrics.StorageFailures.WithLabelValues("write", common.StorageKeyDeviceData).Inc()
		f.logger.Warn("Failed to write telemetry cache", zap.Error(err))
	}
}

// History returns every accumulated reading, oldest first. An empty deviceID
// returns all devices.
func (f *Fetcher) History(deviceID string) []models.DeviceReading {
	history := f.loadHistory()
	if deviceID == "" {
		return history
	}
	return common.Filter(history, func(r models.DeviceReading) bool { return r.ID == deviceID })
}

func (f *Fetcher) loadHistory() []models.DeviceReading {
	raw, ok, err := f.store.Get(common.StorageKeyHistoricalData)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("read", common.StorageKeyHistoricalData).Inc()
		return []models.DeviceReading{}
	}
	if !ok {
		return []models.DeviceReading{}
	}
	var history []models.DeviceReading
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		f.logger.Warn("Corrupt telemetry history ignored", zap.Error(err))
		return []models.DeviceReading{}
	}
	return history
}

// appendHistory merges readings into the history, dropping repeats of the
// same device+timestamp and keeping the newest entries per device.
func (f *Fetcher) appendHistory(readings []models.DeviceReading) {
	if len(readings) == 0 {
		return
	}

	history := f.loadHistory()
	seen := make(map[string]bool, len(history)+len(readings))
	perDevice := make(map[string][]models.DeviceReading)

	for _, r := range append(history, readings...) {
		key := models.AlertID(r.ID, r.Timestamp)
		if seen[key] {
			continue
		}
		seen[key] = true
		perDevice[r.ID] = append(perDevice[r.ID], r)
	}

	merged := make([]models.DeviceReading, 0, len(seen))
	for _, entries := range perDevice {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp > entries[j].Timestamp })
		if len(entries) > f.opts.HistoryPerDevice {
			entries = entries[:f.opts.HistoryPerDevice]
		}
		merged = append(merged, entries...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Timestamp == merged[j].Timestamp {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].Timestamp < merged[j].Timestamp
	})

	data, err := json.Marshal(merged)
	if err != nil {
		return
	}
	if err := f.store.Set(common.StorageKeyHistoricalData, string(data)); err != nil {
		metrics.StorageFailures.WithLabelValues("write", common.StorageKeyHistoricalData).Inc()
		f.logger.Warn("Failed to write telemetry history", zap.Error(err))
	}
}
