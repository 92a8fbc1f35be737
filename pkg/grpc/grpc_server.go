package grpc

import (
	"golang.org/x/time/rate"

	"liyu1981.xyz/safetrack-monitor-service/pkg/safetrack"
)

type AlertServer struct {
	SafeTrack        *safetrack.SafeTrack
	RateLimiterStore *safetrack.RateLimiterStore
}

var _ AlertServiceServer = (*AlertServer)(nil)

func (s *AlertServer) GetLimiter(clientKey string) *rate.Limiter {
	if s.RateLimiterStore == nil {
		return nil
	} else {
		return s.RateLimiterStore.GetLimiter(clientKey)
	}
}

func (s *AlertServer) CheckClientLimiter(clientKey string) bool {
	limiter := s.GetLimiter(clientKey)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}
