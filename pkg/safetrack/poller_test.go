package safetrack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
	"liyu1981.xyz/safetrack-monitor-service/pkg/safetrack/mocks"
	_ "liyu1981.xyz/safetrack-monitor-service/pkg/testing"
)

func TestPollOnce(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	alerts, _ := GetTestAlertStore(t, 10, 10)
	telemetry := mocks.NewMockITelemetry(ctrl)
	poller := NewPoller(telemetry, NewDetector(alerts), PollerOptions{Now: fixedNow})

	readings := []models.DeviceReading{
		makeReading("dev-1", true, false, 110),
		makeReading("dev-2", false, false, 70),
	}
	gomock.InOrder(
		telemetry.EXPECT().Fetch(gomock.Any()).Return(readings, nil),
		telemetry.EXPECT().Fetch(gomock.Any()).Return(nil, errors.New("request telemetry: timed out")),
	)

	require.NoError(t, poller.PollOnce(context.Background()))

	snapshot := poller.Snapshot()
	assert.Len(t, snapshot.Readings, 2)
	require.Len(t, snapshot.NewAlerts, 1)
	assert.Equal(t, "dev-1", snapshot.NewAlerts[0].DeviceID)
	assert.Equal(t, testNow, snapshot.LastUpdate)
	assert.Empty(t, snapshot.LastError)
	assert.False(t, snapshot.Running)

	require.Error(t, poller.PollOnce(context.Background()))

	snapshot = poller.Snapshot()
	assert.Len(t, snapshot.Readings, 2, "last good readings kept")
	assert.Equal(t, testNow, snapshot.LastUpdate)
	assert.Contains(t, snapshot.LastError, "timed out")
}

func TestPollerAutoRefresh(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	telemetry := mocks.NewMockITelemetry(ctrl)
	detector := mocks.NewMockIDetector(ctrl)

	telemetry.EXPECT().Fetch(gomock.Any()).Return([]models.DeviceReading{makeReading("dev-1", false, false, 70)}, nil).MinTimes(2)
	detector.EXPECT().Evaluate(gomock.Any()).Return([]models.AlertRecord{}).MinTimes(2)

	poller := NewPoller(telemetry, detector, PollerOptions{
		Interval:          10 * time.Millisecond,
		FreshnessInterval: 5 * time.Millisecond,
	})

	poller.Start(context.Background())
	// starting twice keeps a single loop
	poller.SetAutoRefresh(true)
	assert.True(t, poller.Running())

	assert.Eventually(t, func() bool {
		return !poller.Snapshot().LastUpdate.IsZero()
	}, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	poller.SetAutoRefresh(false)
	assert.False(t, poller.Running())
	assert.False(t, poller.Snapshot().Running)

	// stopping again is a no-op
	poller.Stop()
}

func TestPollerFreshnessForcesRefresh(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	telemetry := mocks.NewMockITelemetry(ctrl)
	detector := mocks.NewMockIDetector(ctrl)

	// the poll timer never fires during the test, so any call after the
	// first comes from the freshness timer
	telemetry.EXPECT().Fetch(gomock.Any()).Return(nil, errors.New("down")).MinTimes(2)
	detector.EXPECT().Evaluate(gomock.Any()).Times(0)

	poller := NewPoller(telemetry, detector, PollerOptions{
		Interval:          time.Hour,
		FreshnessInterval: 5 * time.Millisecond,
		StaleAfter:        time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	poller.Stop()

	assert.Equal(t, "down", poller.Snapshot().LastError)
}

func TestPollerParentCancelStopsAutoRefresh(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	telemetry := mocks.NewMockITelemetry(ctrl)
	detector := mocks.NewMockIDetector(ctrl)
	telemetry.EXPECT().Fetch(gomock.Any()).Return([]models.DeviceReading{}, nil).AnyTimes()
	detector.EXPECT().Evaluate(gomock.Any()).Return([]models.AlertRecord{}).AnyTimes()

	poller := NewPoller(telemetry, detector, PollerOptions{
		Interval:          10 * time.Millisecond,
		FreshnessInterval: 5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	poller.Start(ctx)
	require.True(t, poller.Running())

	cancel()
	assert.Eventually(t, func() bool { return !poller.Running() }, time.Second, 5*time.Millisecond)
	assert.False(t, poller.Snapshot().Running)

	// the cancelled context keeps the poller stopped
	poller.SetAutoRefresh(true)
	assert.False(t, poller.Running())
	poller.Stop()
}

func TestPollerStopWithoutStart(t *testing.T) {
	common.SetTestLoggerNop()

	poller := NewPoller(nil, nil, PollerOptions{})
	poller.Stop()
	assert.False(t, poller.Running())

	snapshot := poller.Snapshot()
	assert.NotNil(t, snapshot.Readings)
	assert.NotNil(t, snapshot.NewAlerts)
	assert.True(t, snapshot.LastUpdate.IsZero())
}
