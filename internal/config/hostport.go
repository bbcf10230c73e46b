package config

import (
	"net"
	"strconv"
	"strings"
)

// joinHostPort appends the port unless the host already carries one.
func joinHostPort(host string, port int) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	// Strip a scheme prefix if someone wrote ftp://host in the config.
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
