package service

import (
	"net"
	"strings"
)

// NormalizeDomain turns a Host header into a lookup domain: port stripped,
// lowercased, primary used when empty.
func NormalizeDomain(host, primary string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return primary
	}
	return host
}
