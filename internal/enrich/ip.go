package enrich

import (
	"net"
	"net/http"
	"strings"
)

// LoopbackIP is used when no request metadata identifies the caller.
const LoopbackIP = "127.0.0.1"

// ClientIP derives the caller address from proxy headers in priority order:
// first X-Forwarded-For hop, X-Real-IP, Remote-Addr header, the connection's
// remote host, then loopback. Client payloads never influence the result.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("Remote-Addr")); ip != "" {
		return ip
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
			return host
		}
		return r.RemoteAddr
	}
	return LoopbackIP
}
