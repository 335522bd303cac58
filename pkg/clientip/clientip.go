package clientip

import (
	"net"
	"net/http"
	"strings"
)

// GetIP extracts the client's IP address from an HTTP request, preferring
// proxy headers over the socket address:
//
//  1. CF-Connecting-IP (Cloudflare)
//  2. X-Forwarded-For (standard proxy chain, first valid IP wins)
//  3. X-Real-IP (nginx)
//  4. RemoteAddr (direct connection)
//
// Invalid values are skipped rather than returned, so a spoofed header never
// yields garbage - worst case the socket address wins.
func GetIP(r *http.Request) string {
	if ip := parseIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for ip := range strings.SplitSeq(forwarded, ",") {
			if parsed := parseIP(ip); parsed != "" {
				return parsed
			}
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, assume it is already just an IP.
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(ipStr string) string {
	ipStr = strings.TrimSpace(ipStr)
	if ipStr == "" {
		return ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}
	return ip.String()
}
