package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NormalizeListenAddr turns "12000", ":12000" or "host:12000" into a
// host:port pair. A bare port listens on every interface.
func NormalizeListenAddr(addr string) (string, error) {
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		return fmt.Sprintf(":%d", port), nil
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if _, err := strconv.Atoi(portStr); err != nil {
		return "", fmt.Errorf("invalid port: %v", err)
	}
	return net.JoinHostPort(host, portStr), nil
}

// DialAddr returns the http base URL for reaching a listen address.
func DialAddr(addr string) string {
	if !strings.Contains(addr, ":") {
		if _, err := strconv.Atoi(addr); err == nil {
			addr = ":" + addr
		}
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func IsPortAvailable(host string, port int) bool {
	Verbose("Checking if port %d is available on %s", port, host)
	listener, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.ParseIP(host), Port: port})
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	defer listener.Close()
	return true
}

// CheckListenAddr fails early when the port of addr is already taken.
func CheckListenAddr(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port: %v", err)
	}
	if host == "localhost" {
		host = "127.0.0.1"
	}
	if !IsPortAvailable(host, port) {
		return fmt.Errorf("port %d is already in use", port)
	}
	return nil
}
