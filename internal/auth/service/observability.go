package service

import (
	"context"
	"time"

	"rhymcaffer/pkg/platform/middleware/metadata"
	request "rhymcaffer/pkg/platform/middleware/request"
)

// Audit event names.
const (
	eventUserRegistered = "user_registered"
	eventUserLoggedIn   = "user_logged_in"
	eventTokenRefreshed = "token_refreshed"
	eventUserLoggedOut  = "user_logged_out"
	eventAdminBootstrap = "admin_bootstrapped"
	eventAuthFailed     = "auth_failed"
)

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := request.GetRequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if ip := metadata.ClientIP(ctx); ip != "" {
		attributes = append(attributes, "client_ip", ip)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

// authFailure logs a rejected credential or token and counts it by reason.
// isError marks infrastructure failures as opposed to caller mistakes.
func (s *Service) authFailure(ctx context.Context, reason string, isError bool, attributes ...any) {
	if requestID := request.GetRequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if ip := metadata.ClientIP(ctx); ip != "" {
		attributes = append(attributes, "client_ip", ip)
	}
	args := append(attributes, "event", eventAuthFailed, "reason", reason, "log_type", "standard")
	if isError {
		s.logger.ErrorContext(ctx, eventAuthFailed, args...)
	} else {
		s.logger.WarnContext(ctx, eventAuthFailed, args...)
	}
	if s.metrics != nil {
		s.metrics.IncrementAuthFailures(reason)
	}
}

func (s *Service) observeHashing(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObservePasswordHashing(float64(time.Since(start).Milliseconds()))
	}
}

func (s *Service) incrementRegistrations() {
	if s.metrics != nil {
		s.metrics.IncrementRegistrations()
	}
}

func (s *Service) incrementLogins() {
	if s.metrics != nil {
		s.metrics.IncrementLogins()
	}
}

func (s *Service) incrementRefreshes() {
	if s.metrics != nil {
		s.metrics.IncrementRefreshes()
	}
}

func (s *Service) incrementLogouts() {
	if s.metrics != nil {
		s.metrics.IncrementLogouts()
	}
}

func (s *Service) incrementRefreshReuse() {
	if s.metrics != nil {
		s.metrics.IncrementRefreshReuse()
	}
}
