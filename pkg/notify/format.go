package notify

import (
	"fmt"
	"html"
	"strings"

	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

// FormatAlert renders the notification for one alert.
func FormatAlert(alert models.AlertRecord, to string) EmailParams {
	subject := fmt.Sprintf("[%s] %s alert for device %s", alert.Severity, alert.Status, alert.DeviceID)

	lines := []struct{ label, value string }{
		{"Device", alert.DeviceID},
		{"Status", string(alert.Status)},
		{"Severity", string(alert.Severity)},
		{"Heart rate", fmt.Sprintf("%d BPM", alert.Heartbeat)},
		{"Location", alert.Location},
		{"Coordinates", alert.Coordinates},
		{"Time", alert.Timestamp},
	}

	var text, rows strings.Builder
	text.WriteString(subject + "\n\n")
	for _, l := range lines {
		fmt.Fprintf(&text, "%s: %s\n", l.label, l.value)
		fmt.Fprintf(&rows, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", html.EscapeString(l.label), html.EscapeString(l.value))
	}

	htmlBody := fmt.Sprintf(
		"<h2>%s</h2><table>%s</table><p><a href=\"https://maps.google.com/?q=%g,%g\">Open in maps</a></p>",
		html.EscapeString(subject), rows.String(), alert.Latitude, alert.Longitude,
	)

	return EmailParams{
		ToEmail:     to,
		Subject:     subject,
		DeviceID:    alert.DeviceID,
		Status:      string(alert.Status),
		Severity:    string(alert.Severity),
		Location:    alert.Location,
		Heartbeat:   alert.Heartbeat,
		Coordinates: alert.Coordinates,
		Timestamp:   alert.Timestamp,
		MessageHTML: htmlBody,
		MessageText: text.String(),
	}
}
