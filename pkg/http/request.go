package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig lists the proxy networks whose forwarding headers may be
// believed. With no trusted proxies configured, the peer address is
// treated as the client.
type IPConfig struct {
	TrustedProxies []string // CIDR ranges
}

// ExtractClientIP resolves the client address used for the failed-login
// counter and audit logs. X-Forwarded-For and X-Real-IP are honored only
// when the request arrived from a trusted proxy: anyone can send those
// headers, and trusting them from arbitrary peers lets a client pick its
// own throttling key.
func ExtractClientIP(r *http.Request, cfg *IPConfig) string {
	peer := peerIP(r)

	if cfg == nil || !fromTrustedProxy(peer, cfg.TrustedProxies) {
		return peer
	}

	// X-Forwarded-For lists one hop per proxy; the first valid entry is
	// the original client.
	for _, hop := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := strings.TrimSpace(hop); net.ParseIP(ip) != nil {
			return ip
		}
	}

	if ip := r.Header.Get("X-Real-IP"); net.ParseIP(ip) != nil {
		return ip
	}

	return peer
}

// peerIP returns the transport-level peer address with any port stripped.
func peerIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func fromTrustedProxy(peer string, trusted []string) bool {
	ip := net.ParseIP(peer)
	if ip == nil {
		return false
	}

	for _, cidr := range trusted {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
