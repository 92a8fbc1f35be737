package grpc

import (
	"encoding/json"

	"google.golang.org/protobuf/types/known/structpb"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

// Records cross the wire in their JSON shape, so field names match the
// REST API and export documents.

func alertsToList(alerts []models.AlertRecord) (*structpb.ListValue, error) {
	data, err := json.Marshal(alerts)
	if err != nil {
		return nil, err
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return structpb.NewList(items)
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

func DecodeAlerts(list *structpb.ListValue) ([]models.AlertRecord, error) {
	alerts := []models.AlertRecord{}
	if list == nil {
		return alerts, nil
	}
	data, err := json.Marshal(list.AsSlice())
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func DecodeStruct[T any](s *structpb.Struct) (T, error) {
	var v T
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(data, &v)
	return v, err
}
