package metadata

import (
	"context"
	"net/http"
	"net/netip"
	"strings"
)

// MaxXFFHeaderLength bounds the X-Forwarded-For header we are willing to parse.
const MaxXFFHeaderLength = 500

type contextKeyClientIP struct{}

// Middleware resolves the client address, honouring forwarding headers
// only when the direct peer is a trusted proxy.
type Middleware struct {
	trusted []netip.Prefix
}

// NewMiddleware parses trustedProxies as CIDR prefixes. Invalid entries are skipped.
func NewMiddleware(trustedProxies []string) *Middleware {
	m := &Middleware{}
	for _, raw := range trustedProxies {
		if p, err := netip.ParsePrefix(strings.TrimSpace(raw)); err == nil {
			m.trusted = append(m.trusted, p)
		}
	}
	return m
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientIP(r.Context(), m.clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithClientIP stores the resolved client address on ctx.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyClientIP{}, ip)
}

// ClientIP returns the resolved client address, or "" outside HTTP requests.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(contextKeyClientIP{}).(string); ok {
		return ip
	}
	return ""
}

func (m *Middleware) clientIP(r *http.Request) string {
	remoteIP := parseRemoteAddr(r.RemoteAddr)
	if remoteIP == "" {
		return "unknown"
	}
	if !m.isTrustedProxy(remoteIP) {
		return remoteIP
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && len(xri) <= MaxXFFHeaderLength {
			if _, err := netip.ParseAddr(xri); err == nil {
				return xri
			}
		}
		return remoteIP
	}
	if len(xff) > MaxXFFHeaderLength {
		return remoteIP
	}

	first, _, _ := strings.Cut(xff, ",")
	first = strings.TrimSpace(first)
	if _, err := netip.ParseAddr(first); err != nil {
		return remoteIP
	}
	return first
}

func (m *Middleware) isTrustedProxy(ip string) bool {
	if len(m.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range m.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// parseRemoteAddr strips the port from RemoteAddr.
func parseRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().String()
	}
	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 && !strings.HasPrefix(remoteAddr, "[") {
		return remoteAddr[:idx]
	}
	return strings.Trim(remoteAddr, "[]")
}
