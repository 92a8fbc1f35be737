package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
	"liyu1981.xyz/safetrack-monitor-service/pkg/safetrack"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var loginRequestSchema = z.Struct(z.Shape{
	"username": z.String().Required(),
	"password": z.String().Required(),
})

func (rs *RestfulServer) Login(c *gin.Context) {
	var req LoginRequest
	if err := loginRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	if err := rs.SafeTrack.Session.Login(req.Username, req.Password); err != nil {
		if errors.Is(err, safetrack.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) Logout(c *gin.Context) {
	if err := rs.SafeTrack.Session.Logout(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (rs *RestfulServer) GetDevices(c *gin.Context) {
	snapshot := rs.SafeTrack.Poller.Snapshot()
	if len(snapshot.Readings) == 0 {
		if cached, ok := rs.SafeTrack.Telemetry.Latest(); ok {
			snapshot.Readings = cached.Data
		}
	}
	c.JSON(http.StatusOK, snapshot)
}

func (rs *RestfulServer) GetDeviceHistory(c *gin.Context) {
	deviceID := c.Param("device_id")
	c.JSON(http.StatusOK, rs.SafeTrack.Telemetry.History(deviceID))
}

func (rs *RestfulServer) Refresh(c *gin.Context) {
	if err := rs.SafeTrack.Poller.PollOnce(c.Request.Context()); err != nil {
		rs.logger().Warn("Manual refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch device data"})
		return
	}
	c.JSON(http.StatusOK, rs.SafeTrack.Poller.Snapshot())
}

type AlertQuery struct {
	Device string `json:"device"`
	Status string `json:"status"`
	From   string `json:"from"`
	To     string `json:"to"`
}

var alertQuerySchema = z.Struct(z.Shape{
	"device": z.String(),
	"status": z.String().OneOf([]string{string(models.AlertStatusPanic), string(models.AlertStatusFall)}),
	"from":   z.String(),
	"to":     z.String(),
})

func (rs *RestfulServer) GetAlerts(c *gin.Context) {
	var query AlertQuery
	if err := alertQuerySchema.Parse(zhttp.Request(c.Request), &query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	start, end := time.Time{}, time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)
	if query.From != "" {
		from, ok := models.ParseTimestamp(query.From)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		start = from
	}
	if query.To != "" {
		to, ok := models.ParseTimestamp(query.To)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		end = to
	}
	hasRange := query.From != "" || query.To != ""

	alertStore := rs.SafeTrack.Alerts
	var alerts []models.AlertRecord
	switch {
	case query.Device != "":
		alerts = alertStore.ListByDevice(query.Device)
	case query.Status != "":
		alerts = alertStore.ListByStatus(models.AlertStatus(query.Status))
	case hasRange:
		alerts = alertStore.ListByDateRange(start, end)
	default:
		alerts = alertStore.ListActive()
	}

	alerts = common.Filter(alerts, func(a models.AlertRecord) bool {
		if query.Status != "" && a.Status != models.AlertStatus(query.Status) {
			return false
		}
		if hasRange {
			ts, ok := models.ParseTimestamp(a.Timestamp)
			return ok && !ts.Before(start) && !ts.After(end)
		}
		return true
	})

	c.JSON(http.StatusOK, alerts)
}

func (rs *RestfulServer) GetArchivedAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, rs.SafeTrack.Alerts.ListArchived())
}

func (rs *RestfulServer) DeleteAlert(c *gin.Context) {
	alertID := c.Param("alert_id")
	if !rs.SafeTrack.Alerts.Delete(alertID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not deleted"})
		return
	}
	c.Status(http.StatusOK)
}

func (rs *RestfulServer) ClearActiveAlerts(c *gin.Context) {
	if !rs.SafeTrack.Alerts.ClearActive() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear alerts"})
		return
	}
	c.Status(http.StatusOK)
}

func (rs *RestfulServer) ClearArchivedAlerts(c *gin.Context) {
	if !rs.SafeTrack.Alerts.ClearArchived() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear archived alerts"})
		return
	}
	c.Status(http.StatusOK)
}

type CleanupRequest struct {
	DaysToKeep int `json:"daysToKeep"`
}

var cleanupRequestSchema = z.Struct(z.Shape{
	"daysToKeep": z.Int().GTE(0),
})

func (rs *RestfulServer) CleanupAlerts(c *gin.Context) {
	req := CleanupRequest{DaysToKeep: rs.CleanupDays}
	if c.Request.ContentLength > 0 {
		if err := cleanupRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err})
			return
		}
		if req.DaysToKeep == 0 {
			req.DaysToKeep = rs.CleanupDays
		}
	}

	result := rs.SafeTrack.Alerts.CleanupOlderThan(req.DaysToKeep)
	if result.Err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Err.Error(), "moved": result.Moved})
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": result.Moved})
}

func (rs *RestfulServer) ReplayAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"created": rs.SafeTrack.ReplayHistory()})
}

func (rs *RestfulServer) SendAlertEmail(c *gin.Context) {
	alertID := c.Param("alert_id")

	var alert *models.AlertRecord
	for _, a := range rs.SafeTrack.Alerts.ListActive() {
		if a.ID == alertID {
			alert = &a
			break
		}
	}
	if alert == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}

	if err := rs.SafeTrack.Dispatcher.Send(c.Request.Context(), *alert); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (rs *RestfulServer) SendPendingEmails(c *gin.Context) {
	c.JSON(http.StatusOK, rs.SafeTrack.Dispatcher.SendPending(c.Request.Context()))
}

func (rs *RestfulServer) ExportAlerts(c *gin.Context) {
	includeArchived := c.DefaultQuery("archived", "true") != "false"

	doc, err := rs.SafeTrack.Alerts.ExportSnapshot(includeArchived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	prefix := rs.ExportPrefix
	if prefix == "" {
		prefix = "safetrack-alerts"
	}
	filename := fmt.Sprintf("%s-%s.json", prefix, rs.now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json", doc)
}

func (rs *RestfulServer) ImportAlerts(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !rs.SafeTrack.Alerts.ImportSnapshot(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import document"})
		return
	}
	c.Status(http.StatusOK)
}

func (rs *RestfulServer) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, rs.SafeTrack.Alerts.Stats())
}

func (rs *RestfulServer) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": rs.SafeTrack.Session.Theme()})
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

var themeRequestSchema = z.Struct(z.Shape{
	"theme": z.String().OneOf([]string{string(models.ThemeLight), string(models.ThemeDark), string(models.ThemeSystem)}).Required(),
})

func (rs *RestfulServer) PutTheme(c *gin.Context) {
	var req ThemeRequest
	if err := themeRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}
	if err := rs.SafeTrack.Session.SetTheme(models.Theme(req.Theme)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

type AutoRefreshRequest struct {
	Enabled bool `json:"enabled"`
}

var autoRefreshRequestSchema = z.Struct(z.Shape{
	"enabled": z.Bool(),
})

func (rs *RestfulServer) PutAutoRefresh(c *gin.Context) {
	var req AutoRefreshRequest
	if err := autoRefreshRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}
	rs.SafeTrack.Poller.SetAutoRefresh(req.Enabled)
	rs.logger().Info("Auto-refresh toggled", zap.Bool("enabled", req.Enabled))
	c.JSON(http.StatusOK, gin.H{"autoRefresh": rs.SafeTrack.Poller.Running()})
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
