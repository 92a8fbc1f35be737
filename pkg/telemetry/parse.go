package telemetry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	z "github.com/Oudwins/zog"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

type ParseReason string

const (
	ReasonNotAnObject ParseReason = "not_an_object"
	ReasonMissingID   ParseReason = "missing_id"
	ReasonUnknownID   ParseReason = "unknown_id"
	ReasonNoLocation  ParseReason = "no_location"
)

// ParseError names why an upstream record was not turned into a reading.
type ParseError struct {
	Reason ParseReason
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid telemetry record: %s", e.Reason)
	}
	return fmt.Sprintf("invalid telemetry record: %s: %s", e.Reason, e.Detail)
}

var readingSchema = z.Struct(z.Shape{
	"ID": z.String().Min(1).Required(),
})

// ParseReading coerces one untyped record into a DeviceReading. Missing
// numbers become 0, missing strings become "", status flags accept true or
// the string "true". Records without a usable id, and records with neither
// location text nor non-zero coordinates, are rejected.
func ParseReading(raw any) (models.DeviceReading, error) {
	record, ok := raw.(map[string]any)
	if !ok {
		return models.DeviceReading{}, &ParseError{Reason: ReasonNotAnObject, Detail: fmt.Sprintf("%T", raw)}
	}

	reading := models.DeviceReading{
		ID:          coerceString(record["id"]),
		Timestamp:   coerceString(record["timestamp"]),
		Location:    coerceString(record["location"]),
		Latitude:    coerceFloat(record["latitude"]),
		Longitude:   coerceFloat(record["longitude"]),
		PanicStatus: coerceBool(record["panicstatus"]),
		FallStatus:  coerceBool(record["fallstatus"]),
		Heartbeat:   coerceHeartbeat(record["heartbeat"]),
	}

	if issues := readingSchema.Validate(&reading); issues != nil {
		return models.DeviceReading{}, &ParseError{Reason: ReasonMissingID}
	}
	if reading.ID == "unknown" {
		return models.DeviceReading{}, &ParseError{Reason: ReasonUnknownID}
	}
	if reading.Location == "" && reading.Latitude == 0 && reading.Longitude == 0 {
		return models.DeviceReading{}, &ParseError{Reason: ReasonNoLocation, Detail: reading.ID}
	}

	return reading, nil
}

// ParsePayload accepts a single JSON object or an array of objects. Rejected
// records are returned alongside the accepted ones so callers can count them.
func ParsePayload(body []byte) ([]models.DeviceReading, []error, error) {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil, fmt.Errorf("decode payload: %w", err)
	}

	var records []any
	switch p := payload.(type) {
	case []any:
		records = p
	case map[string]any:
		records = []any{p}
	default:
		return nil, nil, fmt.Errorf("decode payload: unexpected %T", payload)
	}

	readings := make([]models.DeviceReading, 0, len(records))
	var rejected []error
	for _, record := range records {
		reading, err := ParseReading(record)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		readings = append(readings, reading)
	}
	return readings, rejected, nil
}

func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func coerceFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}

// coerceHeartbeat clamps to the int32 range so huge values stay huge
// instead of wrapping on conversion.
func coerceHeartbeat(v any) int {
	f := coerceFloat(v)
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int(f)
	}
}

func coerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}
