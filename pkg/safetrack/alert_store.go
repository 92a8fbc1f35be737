package safetrack

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/kv"
	"liyu1981.xyz/safetrack-monitor-service/pkg/metrics"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

const (
	DefaultMaxActiveAlerts   = 1000
	DefaultMaxArchivedAlerts = 5000
	DefaultCleanupDays       = 30

	// isoMillis matches the millisecond ISO-8601 form dashboards emit.
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

var errCorrupt = errors.New("corrupt alert collection")

type AlertStoreOptions struct {
	MaxActive   int
	MaxArchived int
	Now         func() time.Time
}

// AlertStore keeps the active and archived collections as whole JSON arrays
// in the key-value store. Each method is a read-modify-write of full blobs;
// concurrent writers from other processes are last-write-wins.
type AlertStore struct {
	store  kv.Store
	opts   AlertStoreOptions
	logger *zap.Logger
}

func NewAlertStore(store kv.Store, opts AlertStoreOptions) *AlertStore {
	if opts.MaxActive <= 0 {
		opts.MaxActive = DefaultMaxActiveAlerts
	}
	if opts.MaxArchived <= 0 {
		opts.MaxArchived = DefaultMaxArchivedAlerts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AlertStore{
		store:  store,
		opts:   opts,
		logger: common.GetCoreLogger(common.LoggerCategoryAlertStore),
	}
}

// load returns errCorrupt together with an empty collection when the blob is
// not a JSON array of alerts, and a nil collection on storage failure.
func (a *AlertStore) load(key string) ([]models.AlertRecord, error) {
	raw, ok, err := a.store.Get(key)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("read", key).Inc()
		return nil, err
	}
	if !ok || raw == "" {
		return []models.AlertRecord{}, nil
	}

	var alerts []models.AlertRecord
	if err := json.Unmarshal([]byte(raw), &alerts); err != nil {
		metrics.StorageFailures.WithLabelValues("decode", key).Inc()
		return []models.AlertRecord{}, fmt.Errorf("%w: %s: %v", errCorrupt, key, err)
	}
	if alerts == nil {
		alerts = []models.AlertRecord{}
	}
	return alerts, nil
}

// loadForWrite treats a corrupt collection as empty, so the next write
// replaces it, but refuses to continue when storage itself failed.
func (a *AlertStore) loadForWrite(key string) ([]models.AlertRecord, bool) {
	alerts, err := a.load(key)
	if err == nil {
		return alerts, true
	}
	if errors.Is(err, errCorrupt) {
		a.logger.Warn("Corrupt alert collection treated as empty", zap.String("key", key), zap.Error(err))
		return alerts, true
	}
	a.logger.Error("Failed to read alert collection", zap.String("key", key), zap.Error(err))
	return nil, false
}

func (a *AlertStore) save(key string, alerts []models.AlertRecord) bool {
	data, err := json.Marshal(alerts)
	if err != nil {
		a.logger.Error("Failed to encode alert collection", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := a.store.Set(key, string(data)); err != nil {
		metrics.StorageFailures.WithLabelValues("write", key).Inc()
		a.logger.Error("Failed to write alert collection", zap.String("key", key), zap.Int("count", len(alerts)), zap.Error(err))
		return false
	}
	if key == common.StorageKeyActiveAlerts {
		metrics.ActiveAlerts.Set(float64(len(alerts)))
	}
	return true
}

func (a *AlertStore) list(key string) []models.AlertRecord {
	alerts, err := a.load(key)
	if err != nil {
		a.logger.Warn("Alert collection unreadable, returning empty", zap.String("key", key), zap.Error(err))
		return []models.AlertRecord{}
	}
	return alerts
}

func indexOf(alerts []models.AlertRecord, alertID string) int {
	return slices.IndexFunc(alerts, func(a models.AlertRecord) bool { return a.ID == alertID })
}

// Submit stores a new alert at the head of the active collection. It returns
// false for an id already present in either collection and on any storage
// failure. Severity is always recomputed from the heartbeat.
func (a *AlertStore) Submit(candidate models.AlertRecord) bool {
	active, ok := a.loadForWrite(common.StorageKeyActiveAlerts)
	if !ok {
		return false
	}

	if indexOf(active, candidate.ID) >= 0 || indexOf(a.list(common.StorageKeyArchivedAlerts), candidate.ID) >= 0 {
		metrics.AlertDuplicates.Inc()
		a.logger.Debug("Duplicate alert ignored", zap.String("alertId", candidate.ID))
		return false
	}

	candidate.Severity = models.SeverityForHeartbeat(candidate.Heartbeat)
	candidate.Archived = false

	active = append([]models.AlertRecord{candidate}, active...)

	if len(active) > a.opts.MaxActive {
		overflow := slices.Clone(active[a.opts.MaxActive:])
		active = active[:a.opts.MaxActive]
		if !a.moveToArchive(overflow, active, "overflow") {
			a.logger.Error("Failed to archive overflow, alert not stored", zap.String("alertId", candidate.ID))
			return false
		}
	} else if !a.save(common.StorageKeyActiveAlerts, active) {
		return false
	}

	metrics.AlertsCreated.WithLabelValues(string(candidate.Status), string(candidate.Severity)).Inc()
	a.logger.Info("Alert saved", zap.Reflect("alert", candidate))
	return true
}

func (a *AlertStore) ListActive() []models.AlertRecord {
	return a.list(common.StorageKeyActiveAlerts)
}

func (a *AlertStore) ListArchived() []models.AlertRecord {
	return a.list(common.StorageKeyArchivedAlerts)
}

func (a *AlertStore) ListByDevice(deviceID string) []models.AlertRecord {
	return common.Filter(a.ListActive(), func(r models.AlertRecord) bool { return r.DeviceID == deviceID })
}

func (a *AlertStore) ListByStatus(status models.AlertStatus) []models.AlertRecord {
	return common.Filter(a.ListActive(), func(r models.AlertRecord) bool { return r.Status == status })
}

// ListByDateRange keeps alerts whose timestamp lies in [start, end]. Alerts
// with unparsable timestamps never match.
func (a *AlertStore) ListByDateRange(start, end time.Time) []models.AlertRecord {
	return common.Filter(a.ListActive(), func(r models.AlertRecord) bool {
		ts, ok := models.ParseTimestamp(r.Timestamp)
		return ok && !ts.Before(start) && !ts.After(end)
	})
}

// Archive prepends alerts to the archive with archived=true. It does not
// remove them from the active collection. Entries beyond the archive cap are
// dropped permanently and counted.
func (a *AlertStore) Archive(alerts []models.AlertRecord) bool {
	dropped, ok := a.writeArchive(alerts)
	if ok {
		a.recordArchived(len(alerts), dropped, "manual")
	}
	return ok
}

// moveToArchive writes alerts to the archive and then the remaining active
// collection. When the active write fails the previous archive blob is
// restored, so no id ends up in both collections.
func (a *AlertStore) moveToArchive(alerts, remaining []models.AlertRecord, reason string) bool {
	prev, hadPrev, err := a.store.Get(common.StorageKeyArchivedAlerts)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("read", common.StorageKeyArchivedAlerts).Inc()
		a.logger.Error("Failed to read alert collection", zap.String("key", common.StorageKeyArchivedAlerts), zap.Error(err))
		return false
	}

	dropped, ok := a.writeArchive(alerts)
	if !ok {
		return false
	}
	if !a.save(common.StorageKeyActiveAlerts, remaining) {
		a.restore(common.StorageKeyArchivedAlerts, prev, hadPrev)
		return false
	}

	a.recordArchived(len(alerts), dropped, reason)
	return true
}

func (a *AlertStore) restore(key, prev string, hadPrev bool) {
	var err error
	if hadPrev {
		err = a.store.Set(key, prev)
	} else {
		err = a.store.Remove(key)
	}
	if err != nil {
		metrics.StorageFailures.WithLabelValues("write", key).Inc()
		a.logger.Error("Failed to roll back alert collection", zap.String("key", key), zap.Error(err))
		return
	}
	a.logger.Warn("Alert collection rolled back", zap.String("key", key))
}

// writeArchive persists the archive with alerts prepended and returns how
// many of the oldest entries fell beyond the cap.
func (a *AlertStore) writeArchive(alerts []models.AlertRecord) (int, bool) {
	if len(alerts) == 0 {
		return 0, true
	}

	archived, ok := a.loadForWrite(common.StorageKeyArchivedAlerts)
	if !ok {
		return 0, false
	}

	incoming := make([]models.AlertRecord, len(alerts))
	ids := make(map[string]bool, len(alerts))
	for i, alert := range alerts {
		alert.Archived = true
		incoming[i] = alert
		ids[alert.ID] = true
	}
	// an id re-archived replaces its older archived copy
	archived = common.Filter(archived, func(r models.AlertRecord) bool { return !ids[r.ID] })

	merged := append(incoming, archived...)

	dropped := 0
	if len(merged) > a.opts.MaxArchived {
		dropped = len(merged) - a.opts.MaxArchived
		merged = merged[:a.opts.MaxArchived]
	}

	if !a.save(common.StorageKeyArchivedAlerts, merged) {
		return 0, false
	}
	return dropped, true
}

func (a *AlertStore) recordArchived(count, dropped int, reason string) {
	metrics.AlertsArchived.WithLabelValues(reason).Add(float64(count))
	a.logger.Info("Alerts archived", zap.Int("count", count), zap.String("reason", reason))

	if dropped > 0 {
		a.recordDropped(dropped)
	}
}

func (a *AlertStore) recordDropped(n int) {
	metrics.ArchiveDropped.Add(float64(n))
	total := a.DroppedCount() + n
	if err := a.store.Set(common.StorageKeyArchiveDropped, strconv.Itoa(total)); err != nil {
		metrics.StorageFailures.WithLabelValues("write", common.StorageKeyArchiveDropped).Inc()
		a.logger.Warn("Failed to persist dropped counter", zap.Error(err))
	}
	a.logger.Warn("Archive cap exceeded, oldest archived alerts dropped",
		zap.Int("dropped", n),
		zap.Int("droppedTotal", total),
		zap.Int("maxArchived", a.opts.MaxArchived),
	)
}

// DroppedCount is the number of archived alerts ever lost to the archive cap.
func (a *AlertStore) DroppedCount() int {
	raw, ok, err := a.store.Get(common.StorageKeyArchiveDropped)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Delete removes one alert from the active collection. It returns false when
// the id is not there; the archive is never touched.
func (a *AlertStore) Delete(alertID string) bool {
	active, ok := a.loadForWrite(common.StorageKeyActiveAlerts)
	if !ok {
		return false
	}
	i := indexOf(active, alertID)
	if i < 0 {
		return false
	}
	active = slices.Delete(active, i, i+1)
	if !a.save(common.StorageKeyActiveAlerts, active) {
		return false
	}
	a.logger.Info("Alert deleted", zap.String("alertId", alertID))
	return true
}

func (a *AlertStore) ClearActive() bool {
	return a.clear(common.StorageKeyActiveAlerts)
}

func (a *AlertStore) ClearArchived() bool {
	return a.clear(common.StorageKeyArchivedAlerts)
}

func (a *AlertStore) clear(key string) bool {
	if err := a.store.Remove(key); err != nil {
		metrics.StorageFailures.WithLabelValues("remove", key).Inc()
		a.logger.Error("Failed to clear alert collection", zap.String("key", key), zap.Error(err))
		return false
	}
	if key == common.StorageKeyActiveAlerts {
		metrics.ActiveAlerts.Set(0)
	}
	a.logger.Info("Alert collection cleared", zap.String("key", key))
	return true
}

// CleanupOlderThan archives active alerts older than daysToKeep days. A
// non-positive daysToKeep falls back to 30. Alerts with unparsable
// timestamps stay active.
func (a *AlertStore) CleanupOlderThan(daysToKeep int) models.CleanupResult {
	if daysToKeep <= 0 {
		daysToKeep = DefaultCleanupDays
	}
	cutoff := a.opts.Now().Add(-time.Duration(daysToKeep) * 24 * time.Hour)

	active, ok := a.loadForWrite(common.StorageKeyActiveAlerts)
	if !ok {
		return models.CleanupResult{Err: errors.New("active alerts unreadable")}
	}

	var older, newer []models.AlertRecord
	for _, alert := range active {
		if ts, ok := models.ParseTimestamp(alert.Timestamp); ok && ts.Before(cutoff) {
			older = append(older, alert)
		} else {
			newer = append(newer, alert)
		}
	}

	if len(older) == 0 {
		return models.CleanupResult{}
	}

	if newer == nil {
		newer = []models.AlertRecord{}
	}
	if !a.moveToArchive(older, newer, "cleanup") {
		return models.CleanupResult{Err: errors.New("failed to move old alerts to the archive")}
	}

	a.logger.Info("Old alerts archived", zap.Int("moved", len(older)), zap.Int("daysToKeep", daysToKeep))
	return models.CleanupResult{Moved: len(older)}
}

// MarkEmailSent flips emailSent to true on an active alert. Marking an
// already-sent alert succeeds without writing.
func (a *AlertStore) MarkEmailSent(alertID string) bool {
	active, ok := a.loadForWrite(common.StorageKeyActiveAlerts)
	if !ok {
		return false
	}
	i := indexOf(active, alertID)
	if i < 0 {
		return false
	}
	if active[i].EmailSent {
		return true
	}
	active[i].EmailSent = true
	if !a.save(common.StorageKeyActiveAlerts, active) {
		return false
	}
	a.logger.Info("Alert email marked sent", zap.String("alertId", alertID))
	return true
}

// ExportSnapshot renders the export document as indented JSON.
func (a *AlertStore) ExportSnapshot(includeArchived bool) ([]byte, error) {
	archived := []models.AlertRecord{}
	if includeArchived {
		archived = a.ListArchived()
	}
	doc := models.ExportDocument{
		ExportDate:     a.opts.Now().UTC().Format(isoMillis),
		ActiveAlerts:   a.ListActive(),
		ArchivedAlerts: archived,
		Stats:          a.Stats(),
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ImportSnapshot replaces each collection present in the document. A
// document with no collection, or with any collection that is not an array
// of alerts, is rejected before anything is written.
func (a *AlertStore) ImportSnapshot(document []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(document, &fields); err != nil {
		a.logger.Warn("Import rejected: not a JSON object", zap.Error(err))
		return false
	}

	active, hasActive, err := decodeCollection(fields["activeAlerts"])
	if err != nil {
		a.logger.Warn("Import rejected: malformed activeAlerts", zap.Error(err))
		return false
	}
	archived, hasArchived, err := decodeCollection(fields["archivedAlerts"])
	if err != nil {
		a.logger.Warn("Import rejected: malformed archivedAlerts", zap.Error(err))
		return false
	}
	if !hasActive && !hasArchived {
		a.logger.Warn("Import rejected: no alert collections in document")
		return false
	}

	if hasActive && !a.save(common.StorageKeyActiveAlerts, active) {
		return false
	}
	if hasArchived && !a.save(common.StorageKeyArchivedAlerts, archived) {
		return false
	}

	a.logger.Info("Alerts imported",
		zap.Bool("active", hasActive), zap.Int("activeCount", len(active)),
		zap.Bool("archived", hasArchived), zap.Int("archivedCount", len(archived)),
	)
	return true
}

func decodeCollection(raw json.RawMessage) ([]models.AlertRecord, bool, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, false, nil
	}
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false, errors.New("not an array")
	}
	var alerts []models.AlertRecord
	if err := json.Unmarshal(raw, &alerts); err != nil {
		return nil, false, err
	}
	if alerts == nil {
		alerts = []models.AlertRecord{}
	}
	return alerts, true, nil
}

func (a *AlertStore) Stats() models.StorageStats {
	active := a.ListActive()
	archived := a.ListArchived()

	stats := models.StorageStats{
		TotalAlerts:    len(active) + len(archived),
		ActiveAlerts:   len(active),
		ArchivedAlerts: len(archived),
		AlertsByStatus: map[models.AlertStatus]int{},
		DroppedAlerts:  a.DroppedCount(),
	}

	timestamps := make([]string, 0, stats.TotalAlerts)
	for _, alert := range append(slices.Clone(active), archived...) {
		stats.AlertsByStatus[alert.Status]++
		if alert.EmailSent {
			stats.EmailsSent++
		}
		if alert.Timestamp != "" {
			timestamps = append(timestamps, alert.Timestamp)
		}
	}

	if len(timestamps) > 0 {
		sort.Strings(timestamps)
		stats.OldestAlert = timestamps[0]
		stats.NewestAlert = timestamps[len(timestamps)-1]
	}

	activeJSON, _ := json.Marshal(active)
	archivedJSON, _ := json.Marshal(archived)
	stats.StorageSize = len(activeJSON) + len(archivedJSON)

	return stats
}
