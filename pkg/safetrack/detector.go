package safetrack

import (
	"go.uber.org/zap"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

// HeartbeatThreshold is exclusive: a reading must exceed it to alert.
const HeartbeatThreshold = 90

type Detector struct {
	alerts IAlertStore
	logger *zap.Logger
}

func NewDetector(alerts IAlertStore) *Detector {
	return &Detector{
		alerts: alerts,
		logger: common.GetCoreLogger(common.LoggerCategoryDetector),
	}
}

// IsCritical reports whether a reading has a raised status flag and a
// heartbeat strictly above the threshold.
func IsCritical(reading models.DeviceReading) bool {
	return (reading.PanicStatus || reading.FallStatus) && reading.Heartbeat > HeartbeatThreshold
}

// BuildAlert turns a critical reading into a candidate record. Panic wins
// when both flags are raised.
func BuildAlert(reading models.DeviceReading) models.AlertRecord {
	status := models.AlertStatusFall
	if reading.PanicStatus {
		status = models.AlertStatusPanic
	}
	return models.AlertRecord{
		ID:          models.AlertID(reading.ID, reading.Timestamp),
		DeviceID:    reading.ID,
		Timestamp:   reading.Timestamp,
		Location:    reading.Location,
		Latitude:    reading.Latitude,
		Longitude:   reading.Longitude,
		Status:      status,
		Heartbeat:   reading.Heartbeat,
		Coordinates: models.FormatCoordinates(reading.Latitude, reading.Longitude),
		EmailSent:   false,
		Severity:    models.SeverityForHeartbeat(reading.Heartbeat),
	}
}

// Evaluate submits an alert for every critical reading not already active
// and returns the records created during this call.
func (d *Detector) Evaluate(readings []models.DeviceReading) []models.AlertRecord {
	return d.detect(readings, "poll")
}

// Replay runs detection over accumulated history.
func (d *Detector) Replay(history []models.DeviceReading) []models.AlertRecord {
	created := d.detect(history, "replay")
	d.logger.Info("History replayed", zap.Int("readings", len(history)), zap.Int("created", len(created)))
	return created
}

func (d *Detector) detect(readings []models.DeviceReading, source string) []models.AlertRecord {
	created := []models.AlertRecord{}

	var active map[string]bool
	for _, reading := range readings {
		if !IsCritical(reading) {
			continue
		}

		if active == nil {
			active = map[string]bool{}
			for _, alert := range d.alerts.ListActive() {
				active[alert.ID] = true
			}
		}

		candidate := BuildAlert(reading)
		if active[candidate.ID] {
			continue
		}

		d.logger.Info("Alert found", zap.String("source", source), zap.Reflect("alert", candidate))

		if !d.alerts.Submit(candidate) {
			continue
		}
		active[candidate.ID] = true
		created = append(created, candidate)
	}

	return created
}
