package common

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	_ "liyu1981.xyz/safetrack-monitor-service/pkg/testing"
)

func TestLoggingCapture(t *testing.T) {
	var buf bytes.Buffer
	SetTestCaptureLogger(&buf, zapcore.InfoLevel)

	logger := GetCoreLogger(LoggerCategoryAlertStore)
	logger.Info("Alert stored")
	logger.Debug("below capture level")

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Alert stored") {
		t.Errorf("expected log output to contain message, got: %s", logOutput)
	}
	if !strings.Contains(logOutput, `"category":"alert_store"`) {
		t.Errorf("expected log output to carry category, got: %s", logOutput)
	}
	if !strings.Contains(logOutput, `"logger":"safetrack_core"`) {
		t.Errorf("expected log output to carry logger name, got: %s", logOutput)
	}
	if strings.Contains(logOutput, "below capture level") {
		t.Errorf("expected debug line to be filtered, got: %s", logOutput)
	}
}

func TestFilter(t *testing.T) {
	evens := Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 })
	if len(evens) != 2 || evens[0] != 2 || evens[1] != 4 {
		t.Errorf("unexpected filter result %v", evens)
	}

	none := Filter([]int{}, func(int) bool { return true })
	if none == nil {
		t.Error("expected empty non-nil slice")
	}
}
