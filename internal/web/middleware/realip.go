package middleware

import (
	"net/http"
	"net/netip"
	"strings"
)

// TrustedRealIP rewrites RemoteAddr to the bare client IP, without a port,
// so the rate limiter and request log key on the client rather than the
// connection. Forwarding headers are ignored unless the connecting peer is
// inside one of the trusted prefixes.
//
// X-Forwarded-For wins over X-Real-IP. It is read from the right and the
// first hop outside the trusted prefixes is the client, so addresses a
// client prepends itself are never used. When every hop is trusted the
// leftmost one is the client.
func TrustedRealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip, ok := clientIP(r, trusted); ok {
				r.RemoteAddr = ip.String()
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns false only when RemoteAddr is not an address.
func clientIP(r *http.Request, trusted []netip.Prefix) (netip.Addr, bool) {
	peer, ok := parsePeer(r.RemoteAddr)
	if !ok {
		return netip.Addr{}, false
	}
	if !isTrusted(peer, trusted) {
		return peer, true
	}

	if ip, ok := forwardedClient(r.Header.Values("X-Forwarded-For"), trusted); ok {
		return ip, true
	}
	if ip, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return ip.Unmap(), true
	}
	return peer, true
}

// forwardedClient walks the hops right to left. A malformed hop ends the
// walk without a result.
func forwardedClient(values []string, trusted []netip.Prefix) (netip.Addr, bool) {
	if len(values) == 0 {
		return netip.Addr{}, false
	}
	hops := strings.Split(strings.Join(values, ","), ",")

	var leftmost netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		ip, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			return netip.Addr{}, false
		}
		ip = ip.Unmap()
		if !isTrusted(ip, trusted) {
			return ip, true
		}
		leftmost = ip
	}
	return leftmost, leftmost.IsValid()
}

// parsePeer accepts "host:port" or a bare address.
func parsePeer(addr string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr().Unmap(), true
	}
	if ip, err := netip.ParseAddr(addr); err == nil {
		return ip.Unmap(), true
	}
	return netip.Addr{}, false
}

func isTrusted(ip netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
