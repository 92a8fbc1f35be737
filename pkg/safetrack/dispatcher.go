package safetrack

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
	"liyu1981.xyz/safetrack-monitor-service/pkg/metrics"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
	"liyu1981.xyz/safetrack-monitor-service/pkg/notify"
)

const DefaultBulkSendDelay = time.Second

type DispatcherOptions struct {
	// To is the recipient of every alert email.
	To string
	// Delay is the minimum spacing between sends in SendPending.
	Delay time.Duration
}

// Dispatcher formats alerts, hands them to the sender and records delivery
// back into the alert store. Nothing is retried.
type Dispatcher struct {
	alerts IAlertStore
	sender ISender
	opts   DispatcherOptions
	logger *zap.Logger
}

func NewDispatcher(alerts IAlertStore, sender ISender, opts DispatcherOptions) *Dispatcher {
	if opts.Delay <= 0 {
		opts.Delay = DefaultBulkSendDelay
	}
	return &Dispatcher{
		alerts: alerts,
		sender: sender,
		opts:   opts,
		logger: common.GetCoreLogger(common.LoggerCategoryDispatcher),
	}
}

// Send emails one alert. emailSent is only flipped after the sender reports
// success.
func (d *Dispatcher) Send(ctx context.Context, alert models.AlertRecord) error {
	params := notify.FormatAlert(alert, d.opts.To)

	if err := d.sender.Send(ctx, params); err != nil {
		metrics.Emails.WithLabelValues("failed").Inc()
		d.logger.Error("Alert email failed", zap.String("alertId", alert.ID), zap.Error(err))
		return fmt.Errorf("send alert %s: %w", alert.ID, err)
	}

	metrics.Emails.WithLabelValues("sent").Inc()
	if !d.alerts.MarkEmailSent(alert.ID) {
		d.logger.Warn("Alert email sent but not recorded", zap.String("alertId", alert.ID))
	} else {
		d.logger.Info("Alert email sent", zap.String("alertId", alert.ID), zap.String("to", d.opts.To))
	}
	return nil
}

// SendPending sends every active alert with emailSent=false, one at a time
// and spaced by the configured delay. A failed send does not stop the rest.
// Alerts not attempted because ctx ended are counted as skipped.
func (d *Dispatcher) SendPending(ctx context.Context) models.BulkSendResult {
	pending := common.Filter(d.alerts.ListActive(), func(a models.AlertRecord) bool { return !a.EmailSent })

	result := models.BulkSendResult{}
	limiter := rate.NewLimiter(rate.Every(d.opts.Delay), 1)

	for i, alert := range pending {
		if err := limiter.Wait(ctx); err != nil {
			result.Skipped = len(pending) - i
			d.logger.Warn("Bulk send interrupted", zap.Int("skipped", result.Skipped), zap.Error(err))
			break
		}
		if err := d.Send(ctx, alert); err != nil {
			result.Failed++
			continue
		}
		result.Sent++
	}

	d.logger.Info("Bulk send finished",
		zap.Int("pending", len(pending)),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
	)
	return result
}
