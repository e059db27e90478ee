package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrustedProxies makes c.RealIP() see through the reverse proxies listed in
// TRUSTED_PROXIES (CIDRs such as "10.0.0.0/8" or "fd00::/8"). Without it,
// every browser behind the proxy shares one login rate limit bucket.
func TrustedProxies(e *echo.Echo, trustedCIDRs []string) {
	e.IPExtractor = buildIPExtractor(trustedCIDRs)
}

// proxySet is the parsed TRUSTED_PROXIES list.
type proxySet []netip.Prefix

func parseProxySet(cidrs []string) proxySet {
	var set proxySet
	for _, cidr := range cidrs {
		prefix, err := netip.ParsePrefix(strings.TrimSpace(cidr))
		if err != nil {
			slog.Warn("ignoring invalid trusted proxy CIDR", slog.String("cidr", cidr))
			continue
		}
		set = append(set, prefix.Masked())
	}
	return set
}

func (s proxySet) contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range s {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// buildIPExtractor honours forwarding headers only on connections from a
// trusted proxy. X-Real-IP wins; otherwise X-Forwarded-For is read right to
// left and the first hop outside the trusted set is the client, so a
// browser cannot pick its own address by prepending to the header.
func buildIPExtractor(trustedCIDRs []string) echo.IPExtractor {
	trusted := parseProxySet(trustedCIDRs)

	return func(req *http.Request) string {
		peer := peerIP(req.RemoteAddr)
		if !trusted.contains(peer) {
			return peer
		}

		if realIP := strings.TrimSpace(req.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}

		hops := strings.Split(req.Header.Get("X-Forwarded-For"), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !trusted.contains(hop) {
				return hop
			}
		}
		return peer
	}
}

// peerIP is the host part of a "host:port" RemoteAddr.
func peerIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
