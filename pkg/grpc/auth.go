package grpc

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"liyu1981.xyz/safetrack-monitor-service/pkg/common"
)

const (
	MetadataKeyUser = "x-safetrack-user"
	MetadataKeyPass = "x-safetrack-pass"
)

// Credentials sends the admin account with every call. Pass it to
// grpc.WithPerRPCCredentials.
type Credentials struct {
	User string
	Pass string
}

func (c Credentials) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{MetadataKeyUser: c.User, MetadataKeyPass: c.Pass}, nil
}

func (c Credentials) RequireTransportSecurity() bool {
	return false
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// authorized accepts either the dashboard's session flag or admin credentials
// carried in the call metadata.
func (s *AlertServer) authorized(ctx context.Context) bool {
	session := s.SafeTrack.Session
	if session == nil {
		return false
	}
	if session.IsAuthenticated() {
		return true
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return false
	}
	return session.CheckCredentials(firstValue(md, MetadataKeyUser), firstValue(md, MetadataKeyPass))
}

func (s *AlertServer) CreateAuthInterceptor(targetMethods []string) grpc.UnaryServerInterceptor {
	targetMethodMap := common.Reducer(targetMethods,
		func(m map[string]bool, method string) map[string]bool {
			m[method] = true
			return m
		},
		map[string]bool{},
	)

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if targetMethodMap[info.FullMethod] && !s.authorized(ctx) {
			common.GetLoggerWith(common.LoggerNameGrpcServer).Warn("Unauthenticated call rejected",
				zap.String("method", info.FullMethod),
				zap.String("client", peerKey(ctx)),
			)
			return nil, status.Error(codes.Unauthenticated, "login required")
		}

		return handler(ctx, req)
	}
}
