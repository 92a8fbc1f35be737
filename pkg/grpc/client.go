package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

// AlertServiceClient is a typed client for the AlertService.
type AlertServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAlertServiceClient(cc grpc.ClientConnInterface) *AlertServiceClient {
	return &AlertServiceClient{cc: cc}
}

func (c *AlertServiceClient) ListActive(ctx context.Context, opts ...grpc.CallOption) ([]models.AlertRecord, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, AlertService_ListActive_FullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return DecodeAlerts(out)
}

func (c *AlertServiceClient) ListArchived(ctx context.Context, opts ...grpc.CallOption) ([]models.AlertRecord, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, AlertService_ListArchived_FullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return DecodeAlerts(out)
}

func (c *AlertServiceClient) MarkEmailSent(ctx context.Context, alertID string, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, AlertService_MarkEmailSent_FullMethodName, wrapperspb.String(alertID), out, opts...); err != nil {
		return false, err
	}
	return out.Value, nil
}

type CleanupReply struct {
	Moved int    `json:"moved"`
	Error string `json:"error,omitempty"`
}

func (c *AlertServiceClient) Cleanup(ctx context.Context, daysToKeep int32, opts ...grpc.CallOption) (CleanupReply, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlertService_Cleanup_FullMethodName, wrapperspb.Int32(daysToKeep), out, opts...); err != nil {
		return CleanupReply{}, err
	}
	return DecodeStruct[CleanupReply](out)
}

func (c *AlertServiceClient) Stats(ctx context.Context, opts ...grpc.CallOption) (models.StorageStats, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AlertService_Stats_FullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return models.StorageStats{}, err
	}
	return DecodeStruct[models.StorageStats](out)
}

func (c *AlertServiceClient) Export(ctx context.Context, includeArchived bool, opts ...grpc.CallOption) ([]byte, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, AlertService_Export_FullMethodName, wrapperspb.Bool(includeArchived), out, opts...); err != nil {
		return nil, err
	}
	return []byte(out.Value), nil
}

func (c *AlertServiceClient) Import(ctx context.Context, document []byte, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, AlertService_Import_FullMethodName, wrapperspb.String(string(document)), out, opts...); err != nil {
		return false, err
	}
	return out.Value, nil
}
