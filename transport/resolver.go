package transport

import (
	"context"
	"fmt"
	"net"
)

// Resolver turns a destination host and port into a UDP address.
type Resolver interface {
	ResolveUDPAddr(ctx context.Context, host string, port int) (*net.UDPAddr, error)
}

// NetResolver resolves through the system resolver, preferring IPv4 results.
type NetResolver struct {
	resolver *net.Resolver
}

// NewNetResolver creates a resolver backed by net.DefaultResolver.
func NewNetResolver() *NetResolver {
	return &NetResolver{resolver: net.DefaultResolver}
}

// ResolveUDPAddr resolves host (IP literal or name) and validates port.
func (r *NetResolver) ResolveUDPAddr(ctx context.Context, host string, port int) (*net.UDPAddr, error) {
	if host == "" {
		return nil, fmt.Errorf("host cannot be empty")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}

	if ip := net.ParseIP(host); ip != nil {
		return &net.UDPAddr{IP: ip, Port: port}, nil
	}

	addrs, err := r.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses found for %s", host)
	}

	chosen := addrs[0]
	for _, a := range addrs {
		if a.IP.To4() != nil {
			chosen = a
			break
		}
	}
	return &net.UDPAddr{IP: chosen.IP, Port: port, Zone: chosen.Zone}, nil
}
