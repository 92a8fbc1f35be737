package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/safetrack"
)

type RestfulServer struct {
	Server           *gin.Engine
	SafeTrack        *safetrack.SafeTrack
	RateLimiterStore *safetrack.RateLimiterStore

	// ExportPrefix names downloaded export files, "<prefix>-<date>.json".
	ExportPrefix string
	CleanupDays  int
	Now          func() time.Time
}

func (rs *RestfulServer) GetLimiter(clientKey string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(clientKey)
	}
}

func (rs *RestfulServer) CheckClientLimiter(clientKey string) bool {
	limiter := rs.GetLimiter(clientKey)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) logger() *zap.Logger {
	return common.GetLoggerWith(common.LoggerNameRestfulServer)
}

func (rs *RestfulServer) now() time.Time {
	if rs.Now == nil {
		return time.Now()
	}
	return rs.Now()
}

func (rs *RestfulServer) RateLimit(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}
	c.Next()
}

func (rs *RestfulServer) RequireSession(c *gin.Context) {
	if !rs.SafeTrack.Session.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	c.Next()
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)
	rs.Server.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := rs.Server.Group("/", rs.RateLimit)
	api.POST("/login", rs.Login)

	authed := api.Group("/", rs.RequireSession)
	{
		authed.POST("/logout", rs.Logout)
		authed.POST("/refresh", rs.Refresh)
		authed.GET("/stats", rs.GetStats)
	}

	devices := authed.Group("/devices")
	{
		devices.GET("", rs.GetDevices)
		devices.GET("/:device_id/history", rs.GetDeviceHistory)
	}

	alerts := authed.Group("/alerts")
	{
		alerts.GET("", rs.GetAlerts)
		alerts.DELETE("", rs.ClearActiveAlerts)
		alerts.GET("/archived", rs.GetArchivedAlerts)
		alerts.DELETE("/archived", rs.ClearArchivedAlerts)
		alerts.DELETE("/:alert_id", rs.DeleteAlert)
		alerts.POST("/cleanup", rs.CleanupAlerts)
		alerts.POST("/replay", rs.ReplayAlerts)
		alerts.POST("/:alert_id/email", rs.SendAlertEmail)
		alerts.POST("/email/pending", rs.SendPendingEmails)
		alerts.GET("/export", rs.ExportAlerts)
		alerts.POST("/import", rs.ImportAlerts)
	}

	settings := authed.Group("/settings")
	{
		settings.GET("/theme", rs.GetTheme)
		settings.PUT("/theme", rs.PutTheme)
		settings.PUT("/auto-refresh", rs.PutAutoRefresh)
	}
}
