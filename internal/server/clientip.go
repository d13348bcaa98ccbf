package server

import (
	"net"
	"net/http"
	"strings"
)

// clientIP identifies the voting participant behind a request. The first
// entry of X-Forwarded-For wins when a proxy set it; otherwise the
// transport-level peer address is used without its port.
func clientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
