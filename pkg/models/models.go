package models

import (
	"strconv"
	"time"
)

type AlertStatus string

const (
	AlertStatusPanic AlertStatus = "PANIC"
	AlertStatusFall  AlertStatus = "FALL"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// SeverityForHeartbeat classifies a heart rate in beats per minute.
func SeverityForHeartbeat(heartbeat int) Severity {
	switch {
	case heartbeat > 120:
		return SeverityCritical
	case heartbeat > 100:
		return SeverityHigh
	case heartbeat > 90:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DeviceReading is one device snapshot from a telemetry poll.
type DeviceReading struct {
	ID          string  `json:"id"`
	Timestamp   string  `json:"timestamp"`
	Location    string  `json:"location"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	PanicStatus bool    `json:"panicstatus"`
	FallStatus  bool    `json:"fallstatus"`
	Heartbeat   int     `json:"heartbeat"`
}

// AlertRecord is the durable alert. ID is "{deviceId}-{timestamp}".
type AlertRecord struct {
	ID          string      `json:"id"`
	DeviceID    string      `json:"deviceId"`
	Timestamp   string      `json:"timestamp"`
	Location    string      `json:"location"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Status      AlertStatus `json:"status"`
	Heartbeat   int         `json:"heartbeat"`
	Coordinates string      `json:"coordinates"`
	EmailSent   bool        `json:"emailSent"`
	Archived    bool        `json:"archived,omitempty"`
	Severity    Severity    `json:"severity"`
}

func AlertID(deviceID, timestamp string) string {
	return deviceID + "-" + timestamp
}

// FormatCoordinates renders "{lat}, {lon}" with the shortest exact decimal form.
func FormatCoordinates(latitude, longitude float64) string {
	return strconv.FormatFloat(latitude, 'f', -1, 64) + ", " + strconv.FormatFloat(longitude, 'f', -1, 64)
}

// ParseTimestamp accepts the ISO-8601 forms telemetry uses. ok is false when
// the value is not a recognizable instant.
func ParseTimestamp(value string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type StorageStats struct {
	TotalAlerts    int                 `json:"totalAlerts"`
	ActiveAlerts   int                 `json:"activeAlerts"`
	ArchivedAlerts int                 `json:"archivedAlerts"`
	AlertsByStatus map[AlertStatus]int `json:"alertsByStatus"`
	EmailsSent     int                 `json:"emailsSent"`
	OldestAlert    string              `json:"oldestAlert,omitempty"`
	NewestAlert    string              `json:"newestAlert,omitempty"`
	StorageSize    int                 `json:"storageSize"`
	DroppedAlerts  int                 `json:"droppedAlerts"`
}

type ExportDocument struct {
	ExportDate     string        `json:"exportDate"`
	ActiveAlerts   []AlertRecord `json:"activeAlerts"`
	ArchivedAlerts []AlertRecord `json:"archivedAlerts"`
	Stats          StorageStats  `json:"stats"`
}

// DeviceCache is the short-lived telemetry cache entry.
type DeviceCache struct {
	Data       []DeviceReading `json:"data"`
	Timestamp  int64           `json:"timestamp"`
	LastUpdate string          `json:"lastUpdate"`
}

// CleanupResult separates "nothing was old enough" (Moved == 0, Err == nil)
// from a failed cleanup (Err != nil).
type CleanupResult struct {
	Moved int
	Err   error
}

type BulkSendResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// KVEntry backs the sqlite key-value store.
type KVEntry struct {
	Key       string `gorm:"primaryKey;column:entry_key"`
	Value     string `gorm:"column:entry_value;type:text"`
	UpdatedAt time.Time
}
