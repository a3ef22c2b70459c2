package httpapi

import (
	"net/http"
	"net/netip"
	"strings"
)

var clientIPHeaders = []string{
	"Fly-Client-IP",
	"CF-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// clientIP prefers proxy headers and falls back to the socket address.
func clientIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		if ip := parseClientIP(r.Header.Get(header)); ip != "" {
			return ip
		}
	}
	return parseClientIP(r.RemoteAddr)
}

func parseClientIP(raw string) string {
	value, _, _ := strings.Cut(raw, ",")
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if addrPort, err := netip.ParseAddrPort(value); err == nil {
		return addrPort.Addr().Unmap().String()
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}
