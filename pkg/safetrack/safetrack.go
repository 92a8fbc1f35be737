package safetrack

import (
	"context"
	"time"

	"liyu1981.xyz/safetrack-monitor-service/pkg/kv"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
	"liyu1981.xyz/safetrack-monitor-service/pkg/notify"
)

//go:generate mockgen -source=safetrack.go -destination=mocks/mocks.go -package=mocks

// IAlertStore is the sole owner of durable alert state. Storage failures never
// surface as errors: reads degrade to empty, writes to false.
type IAlertStore interface {
	Submit(candidate models.AlertRecord) bool
	ListActive() []models.AlertRecord
	ListArchived() []models.AlertRecord
	ListByDevice(deviceID string) []models.AlertRecord
	ListByStatus(status models.AlertStatus) []models.AlertRecord
	ListByDateRange(start, end time.Time) []models.AlertRecord
	Archive(alerts []models.AlertRecord) bool
	Delete(alertID string) bool
	ClearActive() bool
	ClearArchived() bool
	CleanupOlderThan(daysToKeep int) models.CleanupResult
	MarkEmailSent(alertID string) bool
	ExportSnapshot(includeArchived bool) ([]byte, error)
	ImportSnapshot(document []byte) bool
	Stats() models.StorageStats
}

type IDetector interface {
	Evaluate(readings []models.DeviceReading) []models.AlertRecord
	Replay(history []models.DeviceReading) []models.AlertRecord
}

type ITelemetry interface {
	Fetch(ctx context.Context) ([]models.DeviceReading, error)
	Latest() (models.DeviceCache, bool)
	History(deviceID string) []models.DeviceReading
}

type ISender interface {
	Send(ctx context.Context, params notify.EmailParams) error
}

type IDispatcher interface {
	Send(ctx context.Context, alert models.AlertRecord) error
	SendPending(ctx context.Context) models.BulkSendResult
}

// SafeTrack wires the store, the detection pipeline and the dashboard-facing
// commands together. Every service is explicitly constructed and injected.
type SafeTrack struct {
	Store      kv.Store
	Alerts     IAlertStore
	Detector   IDetector
	Telemetry  ITelemetry
	Dispatcher IDispatcher
	Session    *Session
	Poller     *Poller
}

type ServiceOpts struct {
	Alerts     IAlertStore
	Detector   IDetector
	Telemetry  ITelemetry
	Dispatcher IDispatcher
	Session    *Session
	Poller     *Poller
}

func (s *SafeTrack) WithServices(opts ServiceOpts) *SafeTrack {
	if opts.Alerts != nil {
		s.Alerts = opts.Alerts
	}
	if opts.Detector != nil {
		s.Detector = opts.Detector
	}
	if opts.Telemetry != nil {
		s.Telemetry = opts.Telemetry
	}
	if opts.Dispatcher != nil {
		s.Dispatcher = opts.Dispatcher
	}
	if opts.Session != nil {
		s.Session = opts.Session
	}
	if opts.Poller != nil {
		s.Poller = opts.Poller
	}
	return s
}

type Options struct {
	AlertStore AlertStoreOptions
	Poller     PollerOptions
	Dispatcher DispatcherOptions
	Session    SessionOptions
}

// New builds the default service graph over store, telemetry and sender.
func New(store kv.Store, telemetry ITelemetry, sender ISender, opts Options) *SafeTrack {
	s := &SafeTrack{Store: store}

	alerts := NewAlertStore(store, opts.AlertStore)
	detector := NewDetector(alerts)
	dispatcher := NewDispatcher(alerts, sender, opts.Dispatcher)

	return s.WithServices(ServiceOpts{
		Alerts:     alerts,
		Detector:   detector,
		Telemetry:  telemetry,
		Dispatcher: dispatcher,
		Session:    NewSession(store, opts.Session),
		Poller:     NewPoller(telemetry, detector, opts.Poller),
	})
}

// ReplayHistory runs detection over the accumulated telemetry history.
func (s *SafeTrack) ReplayHistory() []models.AlertRecord {
	return s.Detector.Replay(s.Telemetry.History(""))
}
