package grpc

import (
	"context"
	"fmt"

	z "github.com/Oudwins/zog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func validateAlertID(alertID *string) z.ZogIssueList {
	var alertIdValidator = z.String().Min(1).Required()
	return alertIdValidator.Validate(alertID)
}

func (s *AlertServer) ListActive(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := alertsToList(s.SafeTrack.Alerts.ListActive())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

func (s *AlertServer) ListArchived(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error) {
	list, err := alertsToList(s.SafeTrack.Alerts.ListArchived())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

func (s *AlertServer) MarkEmailSent(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if err := validateAlertID(&req.Value); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "validation error: %v", err)
	}
	return wrapperspb.Bool(s.SafeTrack.Alerts.MarkEmailSent(req.Value)), nil
}

func (s *AlertServer) Cleanup(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	var daysValidator = z.Int32().GTE(0)
	if err := daysValidator.Validate(&req.Value); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "validation error: %v", err)
	}

	result := s.SafeTrack.Alerts.CleanupOlderThan(int(req.Value))
	fields := map[string]any{"moved": result.Moved}
	if result.Err != nil {
		fields["error"] = result.Err.Error()
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *AlertServer) Stats(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	out, err := toStruct(s.SafeTrack.Alerts.Stats())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *AlertServer) Export(ctx context.Context, req *wrapperspb.BoolValue) (*wrapperspb.StringValue, error) {
	doc, err := s.SafeTrack.Alerts.ExportSnapshot(req.Value)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("export failed: %v", err))
	}
	return wrapperspb.String(string(doc)), nil
}

func (s *AlertServer) Import(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.SafeTrack.Alerts.ImportSnapshot([]byte(req.Value))), nil
}
