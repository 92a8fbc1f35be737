package safetrack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
	_ "liyu1981.xyz/safetrack-monitor-service/pkg/testing"
)

func TestSubmitDedup(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.DebugLevel)

	alerts, _ := GetTestAlertStore(t, 10, 20)

	first := makeAlert("dev-1", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)
	assert.True(t, alerts.Submit(first))

	second := first
	second.Location = "somewhere else"
	assert.False(t, alerts.Submit(second))

	active := alerts.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, "Block A", active[0].Location)

	logs := ParseLogs(&buf)
	saved := findLog(logs, "Alert saved")
	require.NotNil(t, saved)
	assert.Equal(t, "alert_store", saved["category"])

	dup := findLog(logs, "Duplicate alert ignored")
	require.NotNil(t, dup)
	assert.Equal(t, first.ID, dup["alertId"])
}

func TestSubmitDedupAgainstArchive(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, _ := GetTestAlertStore(t, 10, 20)
	record := makeAlert("dev-1", "2024-06-15T10:00:00Z", models.AlertStatusFall, 95)
	require.True(t, alerts.Archive([]models.AlertRecord{record}))

	assert.False(t, alerts.Submit(record))
	assert.Empty(t, alerts.ListActive())
}

func TestSubmitSeverity(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, _ := GetTestAlertStore(t, 10, 20)

	cases := []struct {
		heartbeat int
		expected  models.Severity
	}{
		{121, models.SeverityCritical},
		{101, models.SeverityHigh},
		{91, models.SeverityMedium},
		{89, models.SeverityLow},
	}

	for i, tc := range cases {
		candidate := makeAlert(fmt.Sprintf("dev-%d", i), "2024-06-15T10:00:00Z", models.AlertStatusPanic, tc.heartbeat)
		// a caller-provided severity is ignored
		candidate.Severity = models.SeverityLow
		require.True(t, alerts.Submit(candidate))
	}

	active := alerts.ListActive()
	require.Len(t, active, 4)
	// newest first
	for i, tc := range cases {
		assert.Equal(t, tc.expected, active[len(active)-1-i].Severity, "heartbeat %d", tc.heartbeat)
	}
}

func TestSubmitOverflowArchives(t *testing.T) {
	common.SetTestLoggerNop()

	const capActive = 5
	alerts, _ := GetTestAlertStore(t, capActive, 50)

	records := makeAlerts(capActive + 1)
	for _, r := range records {
		require.True(t, alerts.Submit(r))
	}

	active := alerts.ListActive()
	archived := alerts.ListArchived()

	assert.Len(t, active, capActive)
	require.Len(t, archived, 1)
	assert.Equal(t, records[0].ID, archived[0].ID)
	assert.True(t, archived[0].Archived)
	assert.Equal(t, records[capActive].ID, active[0].ID)
	for _, a := range active {
		assert.False(t, a.Archived)
	}
}

func TestSubmitOverflowRollsBackWhenActiveWriteFails(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	alerts, store := getFailingAlertStore(t, 1, 1, common.StorageKeyActiveAlerts)
	records := makeAlerts(3)
	require.True(t, alerts.Archive(records[:1]))
	require.True(t, alerts.Submit(records[1]))
	archivedBefore := alerts.ListArchived()

	store.failing = true
	assert.False(t, alerts.Submit(records[2]))

	active := alerts.ListActive()
	require.Len(t, active, 1)
	assert.Equal(t, records[1].ID, active[0].ID)
	assert.Equal(t, archivedBefore, alerts.ListArchived())
	assert.Equal(t, 0, alerts.DroppedCount())
	assert.Nil(t, findLog(ParseLogs(&buf), "Archive cap exceeded, oldest archived alerts dropped"))

	// once storage recovers the same submit goes through
	store.failing = false
	assert.True(t, alerts.Submit(records[2]))
	assert.Equal(t, records[2].ID, alerts.ListActive()[0].ID)
	require.Len(t, alerts.ListArchived(), 1)
	assert.Equal(t, records[1].ID, alerts.ListArchived()[0].ID)
	assert.Equal(t, 1, alerts.DroppedCount())
}

func TestSubmitOverflowRollbackRemovesNewArchive(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, store := getFailingAlertStore(t, 1, 10, common.StorageKeyActiveAlerts)
	records := makeAlerts(2)
	require.True(t, alerts.Submit(records[0]))

	store.failing = true
	assert.False(t, alerts.Submit(records[1]))

	_, ok, err := store.Get(common.StorageKeyArchivedAlerts)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, alerts.ListActive(), 1)
}

func TestArchiveCapDropsOldest(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	alerts, _ := GetTestAlertStore(t, 10, 3)

	records := makeAlerts(5)
	require.True(t, alerts.Archive(records[:2]))
	require.True(t, alerts.Archive(records[2:]))

	archived := alerts.ListArchived()
	require.Len(t, archived, 3)
	assert.Equal(t, []string{records[2].ID, records[3].ID, records[4].ID},
		common.Mapper(archived, func(a models.AlertRecord) string { return a.ID }))
	assert.Equal(t, 2, alerts.DroppedCount())
	assert.Equal(t, 2, alerts.Stats().DroppedAlerts)

	entry := findLog(ParseLogs(&buf), "Archive cap exceeded, oldest archived alerts dropped")
	require.NotNil(t, entry)
	assert.EqualValues(t, 2, entry["dropped"])
}

func TestArchiveDoesNotTouchActive(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, _ := GetTestAlertStore(t, 10, 10)
	record := makeAlert("dev-1", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)
	require.True(t, alerts.Submit(record))
	require.True(t, alerts.Archive([]models.AlertRecord{record}))

	assert.Len(t, alerts.ListActive(), 1)
	assert.Len(t, alerts.ListArchived(), 1)

	// re-archiving the same id keeps one archived copy
	require.True(t, alerts.Archive([]models.AlertRecord{record}))
	assert.Len(t, alerts.ListArchived(), 1)
}

func TestCleanupOlderThan(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, _ := GetTestAlertStore(t, 100, 100)

	for day := 0; day < 45; day++ {
		ts := testNow.Add(-time.Duration(day) * 24 * time.Hour).Format(time.RFC3339)
		require.True(t, alerts.Submit(makeAlert("dev-1", ts, models.AlertStatusFall, 95)))
	}

	result := alerts.CleanupOlderThan(30)
	require.NoError(t, result.Err)
	assert.Equal(t, 14, result.Moved)
	assert.Len(t, alerts.ListActive(), 31)
	assert.Len(t, alerts.ListArchived(), 14)

	cutoff := testNow.Add(-30 * 24 * time.Hour)
	for _, a := range alerts.ListArchived() {
		ts, ok := models.ParseTimestamp(a.Timestamp)
		require.True(t, ok)
		assert.True(t, ts.Before(cutoff))
		assert.True(t, a.Archived)
	}

	again := alerts.CleanupOlderThan(30)
	assert.NoError(t, again.Err)
	assert.Equal(t, 0, again.Moved)
}

func TestCleanupEdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	t.Run("unparsable timestamps stay active", func(t *testing.T) {
		alerts, _ := GetTestAlertStore(t, 10, 10)
		require.True(t, alerts.Submit(makeAlert("dev-1", "not-a-date", models.AlertStatusPanic, 95)))
		require.True(t, alerts.Submit(makeAlert("dev-2", "2020-01-01T00:00:00Z", models.AlertStatusPanic, 95)))

		result := alerts.CleanupOlderThan(30)
		assert.NoError(t, result.Err)
		assert.Equal(t, 1, result.Moved)
		require.Len(t, alerts.ListActive(), 1)
		assert.Equal(t, "not-a-date", alerts.ListActive()[0].Timestamp)
	})

	t.Run("non-positive days uses default", func(t *testing.T) {
		alerts, _ := GetTestAlertStore(t, 10, 10)
		old := testNow.Add(-31 * 24 * time.Hour).Format(time.RFC3339)
		recent := testNow.Add(-29 * 24 * time.Hour).Format(time.RFC3339)
		require.True(t, alerts.Submit(makeAlert("dev-1", old, models.AlertStatusPanic, 95)))
		require.True(t, alerts.Submit(makeAlert("dev-1", recent, models.AlertStatusPanic, 95)))

		result := alerts.CleanupOlderThan(0)
		assert.NoError(t, result.Err)
		assert.Equal(t, 1, result.Moved)
	})

	t.Run("failed active write leaves both collections as they were", func(t *testing.T) {
		alerts, store := getFailingAlertStore(t, 10, 10, common.StorageKeyActiveAlerts)
		require.True(t, alerts.Submit(makeAlert("dev-1", "2020-01-01T00:00:00Z", models.AlertStatusPanic, 95)))
		require.True(t, alerts.Submit(makeAlert("dev-2", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)))

		store.failing = true
		result := alerts.CleanupOlderThan(30)
		assert.Error(t, result.Err)
		assert.Equal(t, 0, result.Moved)
		assert.Len(t, alerts.ListActive(), 2)
		assert.Empty(t, alerts.ListArchived())

		store.failing = false
		result = alerts.CleanupOlderThan(30)
		assert.NoError(t, result.Err)
		assert.Equal(t, 1, result.Moved)
	})

	t.Run("storage failure is an error, not zero", func(t *testing.T) {
		alerts, store := GetTestAlertStore(t, 10, 10)
		require.True(t, alerts.Submit(makeAlert("dev-1", "2020-01-01T00:00:00Z", models.AlertStatusPanic, 95)))
		store.Broken = true

		result := alerts.CleanupOlderThan(30)
		assert.Error(t, result.Err)
		assert.Equal(t, 0, result.Moved)
	})
}

func TestMarkEmailSent(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, _ := GetTestAlertStore(t, 10, 10)
	record := makeAlert("dev-1", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)
	require.True(t, alerts.Submit(record))

	assert.True(t, alerts.MarkEmailSent(record.ID))
	assert.True(t, alerts.MarkEmailSent(record.ID))
	assert.True(t, alerts.ListActive()[0].EmailSent)

	assert.False(t, alerts.MarkEmailSent("missing"))

	archivedOnly := makeAlert("dev-2", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)
	require.True(t, alerts.Archive([]models.AlertRecord{archivedOnly}))
	assert.False(t, alerts.MarkEmailSent(archivedOnly.ID))
}

func TestDeleteAndClear(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, store := GetTestAlertStore(t, 10, 10)
	records := makeAlerts(3)
	for _, r := range records {
		require.True(t, alerts.Submit(r))
	}
	require.True(t, alerts.Archive(records[:1]))

	assert.True(t, alerts.Delete(records[1].ID))
	assert.False(t, alerts.Delete(records[1].ID))
	assert.Len(t, alerts.ListActive(), 2)
	assert.Len(t, alerts.ListArchived(), 1)

	assert.True(t, alerts.ClearActive())
	assert.Empty(t, alerts.ListActive())
	assert.Len(t, alerts.ListArchived(), 1)

	assert.True(t, alerts.ClearArchived())
	assert.Empty(t, alerts.ListArchived())

	_, ok, err := store.Get(common.StorageKeyActiveAlerts)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestListFilters(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, _ := GetTestAlertStore(t, 10, 10)
	require.True(t, alerts.Submit(makeAlert("dev-1", "2024-06-01T00:00:00Z", models.AlertStatusPanic, 95)))
	require.True(t, alerts.Submit(makeAlert("dev-1", "2024-06-10T00:00:00Z", models.AlertStatusFall, 95)))
	require.True(t, alerts.Submit(makeAlert("dev-2", "2024-06-12T00:00:00Z", models.AlertStatusFall, 95)))
	require.True(t, alerts.Submit(makeAlert("dev-3", "garbage", models.AlertStatusFall, 95)))

	assert.Len(t, alerts.ListByDevice("dev-1"), 2)
	assert.Empty(t, alerts.ListByDevice("nope"))
	assert.NotNil(t, alerts.ListByDevice("nope"))

	assert.Len(t, alerts.ListByStatus(models.AlertStatusFall), 3)
	assert.Len(t, alerts.ListByStatus(models.AlertStatusPanic), 1)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	inRange := alerts.ListByDateRange(start, end)
	assert.Len(t, inRange, 2)
}

func TestCorruptCollectionReadsEmpty(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	alerts, store := GetTestAlertStore(t, 10, 10)
	require.NoError(t, store.Set(common.StorageKeyActiveAlerts, "{not json"))

	assert.Empty(t, alerts.ListActive())
	assert.Equal(t, 0, alerts.Stats().ActiveAlerts)

	// the next write replaces the corrupt blob
	require.True(t, alerts.Submit(makeAlert("dev-1", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)))
	assert.Len(t, alerts.ListActive(), 1)

	assert.NotNil(t, findLog(ParseLogs(&buf), "Alert collection unreadable, returning empty"))
}

func TestStorageFailuresDegrade(t *testing.T) {
	common.SetTestLoggerNop()

	t.Run("unavailable", func(t *testing.T) {
		alerts, store := GetTestAlertStore(t, 10, 10)
		record := makeAlert("dev-1", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)
		require.True(t, alerts.Submit(record))

		store.Broken = true
		assert.Empty(t, alerts.ListActive())
		assert.False(t, alerts.Submit(makeAlert("dev-2", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)))
		assert.False(t, alerts.Delete(record.ID))
		assert.False(t, alerts.MarkEmailSent(record.ID))
		assert.False(t, alerts.ClearActive())
		assert.False(t, alerts.Archive([]models.AlertRecord{record}))

		store.Broken = false
		active := alerts.ListActive()
		require.Len(t, active, 1)
		assert.False(t, active[0].EmailSent)
	})

	t.Run("quota exceeded", func(t *testing.T) {
		alerts, store := GetTestAlertStore(t, 10, 10)
		store.Quota = 64
		assert.False(t, alerts.Submit(makeAlert("dev-1", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)))
		assert.Empty(t, alerts.ListActive())
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	common.SetTestLoggerNop()

	source, _ := GetTestAlertStore(t, 3, 10)
	for _, r := range makeAlerts(5) {
		require.True(t, source.Submit(r))
	}
	require.True(t, source.MarkEmailSent(source.ListActive()[0].ID))

	doc, err := source.ExportSnapshot(true)
	require.NoError(t, err)

	var parsed models.ExportDocument
	require.NoError(t, json.Unmarshal(doc, &parsed))
	assert.Equal(t, "2024-06-15T12:00:00.000Z", parsed.ExportDate)
	assert.Equal(t, 5, parsed.Stats.TotalAlerts)
	assert.Contains(t, string(doc), "\n  \"activeAlerts\"")

	target, _ := GetTestAlertStore(t, 3, 10)
	require.True(t, target.ImportSnapshot(doc))

	assert.Equal(t, source.ListActive(), target.ListActive())
	assert.Equal(t, source.ListArchived(), target.ListArchived())
}

func TestExportWithoutArchive(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, _ := GetTestAlertStore(t, 1, 10)
	for _, r := range makeAlerts(2) {
		require.True(t, alerts.Submit(r))
	}

	doc, err := alerts.ExportSnapshot(false)
	require.NoError(t, err)

	var parsed models.ExportDocument
	require.NoError(t, json.Unmarshal(doc, &parsed))
	assert.Len(t, parsed.ActiveAlerts, 1)
	assert.NotNil(t, parsed.ArchivedAlerts)
	assert.Empty(t, parsed.ArchivedAlerts)
	assert.Equal(t, 1, parsed.Stats.ArchivedAlerts)
}

func TestImportSnapshotEdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	seed := func(t *testing.T) *AlertStore {
		alerts, _ := GetTestAlertStore(t, 10, 10)
		require.True(t, alerts.Submit(makeAlert("dev-1", "2024-06-15T10:00:00Z", models.AlertStatusPanic, 95)))
		require.True(t, alerts.Archive([]models.AlertRecord{makeAlert("dev-2", "2024-06-14T10:00:00Z", models.AlertStatusFall, 95)}))
		return alerts
	}

	tests := []struct {
		name             string
		doc              string
		ok               bool
		expectedActive   int
		expectedArchived int
	}{
		{"not json", `{`, false, 1, 1},
		{"not an object", `[1,2]`, false, 1, 1},
		{"no collections", `{"exportDate":"x"}`, false, 1, 1},
		{"null collections", `{"activeAlerts":null}`, false, 1, 1},
		{"active not array", `{"activeAlerts":{"id":"a"},"archivedAlerts":[]}`, false, 1, 1},
		{"archived malformed", `{"activeAlerts":[],"archivedAlerts":[1,2]}`, false, 1, 1},
		{"active only", `{"activeAlerts":[]}`, true, 0, 1},
		{"archived only", `{"archivedAlerts":[]}`, true, 1, 0},
		{"both replaced", `{"activeAlerts":[{"id":"x-1","deviceId":"x"},{"id":"x-2","deviceId":"x"}],"archivedAlerts":[]}`, true, 2, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alerts := seed(t)
			assert.Equal(t, tc.ok, alerts.ImportSnapshot([]byte(tc.doc)))
			assert.Len(t, alerts.ListActive(), tc.expectedActive)
			assert.Len(t, alerts.ListArchived(), tc.expectedArchived)
		})
	}
}

func TestStats(t *testing.T) {
	common.SetTestLoggerNop()

	alerts, _ := GetTestAlertStore(t, 10, 10)
	empty := alerts.Stats()
	assert.Equal(t, 0, empty.TotalAlerts)
	assert.Empty(t, empty.OldestAlert)
	assert.NotNil(t, empty.AlertsByStatus)

	require.True(t, alerts.Submit(makeAlert("dev-1", "2024-06-02T00:00:00Z", models.AlertStatusPanic, 95)))
	require.True(t, alerts.Submit(makeAlert("dev-2", "2024-06-03T00:00:00Z", models.AlertStatusFall, 95)))
	require.True(t, alerts.MarkEmailSent(models.AlertID("dev-2", "2024-06-03T00:00:00Z")))
	require.True(t, alerts.Archive([]models.AlertRecord{makeAlert("dev-3", "2024-05-01T00:00:00Z", models.AlertStatusFall, 95)}))

	stats := alerts.Stats()
	assert.Equal(t, 3, stats.TotalAlerts)
	assert.Equal(t, 2, stats.ActiveAlerts)
	assert.Equal(t, 1, stats.ArchivedAlerts)
	assert.Equal(t, 1, stats.AlertsByStatus[models.AlertStatusPanic])
	assert.Equal(t, 2, stats.AlertsByStatus[models.AlertStatusFall])
	assert.Equal(t, 1, stats.EmailsSent)
	assert.Equal(t, "2024-05-01T00:00:00Z", stats.OldestAlert)
	assert.Equal(t, "2024-06-03T00:00:00Z", stats.NewestAlert)

	activeJSON, _ := json.Marshal(alerts.ListActive())
	archivedJSON, _ := json.Marshal(alerts.ListArchived())
	assert.Equal(t, len(activeJSON)+len(archivedJSON), stats.StorageSize)
}
