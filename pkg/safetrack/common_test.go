package safetrack

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"liyu1981.xyz/safetrack-monitor-service/pkg/kv"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
	"liyu1981.xyz/safetrack-monitor-service/pkg/safetrack/mocks"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func GetTestAlertStore(t *testing.T, maxActive, maxArchived int) (*AlertStore, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	alerts := NewAlertStore(store, AlertStoreOptions{
		MaxActive:   maxActive,
		MaxArchived: maxArchived,
		Now:         fixedNow,
	})
	return alerts, store
}

func GetMockSafeTrack(t *testing.T) (
	*gomock.Controller,
	*SafeTrack,
	*mocks.MockIAlertStore,
	*mocks.MockITelemetry,
	*mocks.MockISender,
) {
	ctrl := gomock.NewController(t)

	mockAlerts := mocks.NewMockIAlertStore(ctrl)
	mockTelemetry := mocks.NewMockITelemetry(ctrl)
	mockSender := mocks.NewMockISender(ctrl)

	store := kv.NewMemoryStore()
	s := &SafeTrack{Store: store}
	detector := NewDetector(mockAlerts)
	s.WithServices(ServiceOpts{
		Alerts:     mockAlerts,
		Detector:   detector,
		Telemetry:  mockTelemetry,
		Dispatcher: NewDispatcher(mockAlerts, mockSender, DispatcherOptions{To: "ops@example.com", Delay: time.Millisecond}),
		Session:    NewSession(store, SessionOptions{AdminUser: "admin", AdminPass: "secret"}),
		Poller:     NewPoller(mockTelemetry, detector, PollerOptions{}),
	})

	return ctrl, s, mockAlerts, mockTelemetry, mockSender
}

// keyFailingStore fails every Set on one key while failing is true.
type keyFailingStore struct {
	*kv.MemoryStore
	key     string
	failing bool
}

func (s *keyFailingStore) Set(key, value string) error {
	if s.failing && key == s.key {
		return kv.ErrQuotaExceeded
	}
	return s.MemoryStore.Set(key, value)
}

func getFailingAlertStore(t *testing.T, maxActive, maxArchived int, key string) (*AlertStore, *keyFailingStore) {
	t.Helper()
	store := &keyFailingStore{MemoryStore: kv.NewMemoryStore(), key: key}
	alerts := NewAlertStore(store, AlertStoreOptions{
		MaxActive:   maxActive,
		MaxArchived: maxArchived,
		Now:         fixedNow,
	})
	return alerts, store
}

func makeAlert(deviceID, timestamp string, status models.AlertStatus, heartbeat int) models.AlertRecord {
	return models.AlertRecord{
		ID:          models.AlertID(deviceID, timestamp),
		DeviceID:    deviceID,
		Timestamp:   timestamp,
		Location:    "Block A",
		Latitude:    12.5,
		Longitude:   77.25,
		Status:      status,
		Heartbeat:   heartbeat,
		Coordinates: models.FormatCoordinates(12.5, 77.25),
	}
}

func makeAlerts(n int) []models.AlertRecord {
	alerts := make([]models.AlertRecord, n)
	for i := range alerts {
		ts := testNow.Add(-time.Duration(n-i) * time.Minute).Format(time.RFC3339)
		alerts[i] = makeAlert(fmt.Sprintf("dev-%03d", i), ts, models.AlertStatusPanic, 95)
	}
	return alerts
}

func makeReading(deviceID string, panicFlag, fallFlag bool, heartbeat int) models.DeviceReading {
	return models.DeviceReading{
		ID:          deviceID,
		Timestamp:   "2024-06-15T11:59:00Z",
		Location:    "Ward 3",
		Latitude:    1.25,
		Longitude:   103.5,
		PanicStatus: panicFlag,
		FallStatus:  fallFlag,
		Heartbeat:   heartbeat,
	}
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}

func findLog(logs []any, msg string) map[string]any {
	for _, l := range logs {
		entry, ok := l.(map[string]any)
		if ok && entry["msg"] == msg {
			return entry
		}
	}
	return nil
}

func newMockAlerts(ctrl *gomock.Controller) *mocks.MockIAlertStore {
	return mocks.NewMockIAlertStore(ctrl)
}
