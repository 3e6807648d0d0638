// Package netaddr discovers the URLs a running mock server can be reached at
// and probes ports for availability.
package netaddr

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ErrNoAvailablePort is returned when FindAvailablePort exhausts its attempts.
var ErrNoAvailablePort = errors.New("no available port")

// Interface is the subset of net.Interface the resolver needs.
type Interface struct {
	Name     string
	Up       bool
	Loopback bool
	Addrs    []net.Addr
}

// InterfaceFunc enumerates network interfaces.
type InterfaceFunc func() ([]Interface, error)

// Resolver lists reachable addresses for a port.
type Resolver struct {
	interfaces InterfaceFunc
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithInterfaces replaces system interface enumeration.
func WithInterfaces(fn InterfaceFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.interfaces = fn
		}
	}
}

// NewResolver creates a Resolver over the host's interfaces.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{interfaces: SystemInterfaces}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SystemInterfaces enumerates the host's interfaces with their addresses.
// Interfaces whose addresses cannot be read are skipped.
func SystemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		out = append(out, Interface{
			Name:     iface.Name,
			Up:       iface.Flags&net.FlagUp != 0,
			Loopback: iface.Flags&net.FlagLoopback != 0,
			Addrs:    addrs,
		})
	}
	return out, nil
}

// LoopbackAddress returns the loopback URL for port.
func LoopbackAddress(port int) string {
	return "http://localhost:" + strconv.Itoa(port)
}

// LocalAddresses returns http://<ip>:<port> for every IPv4 address on an up,
// non-loopback interface, deduplicated in discovery order. Enumeration
// failures yield an empty list.
func (r *Resolver) LocalAddresses(port int) []string {
	ifaces, err := r.interfaces()
	if err != nil {
		return []string{}
	}

	seen := make(map[string]struct{})
	out := []string{}
	for _, iface := range ifaces {
		if !iface.Up || iface.Loopback {
			continue
		}
		for _, addr := range iface.Addrs {
			ip := ipOf(addr)
			if ip == nil || ip.IsLoopback() {
				continue
			}
			ip4 := ip.To4()
			if ip4 == nil {
				continue
			}
			u := "http://" + net.JoinHostPort(ip4.String(), strconv.Itoa(port))
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

// AllAccessibleAddresses returns the loopback URL followed by LocalAddresses.
func (r *Resolver) AllAccessibleAddresses(port int) []string {
	out := []string{LoopbackAddress(port)}
	for _, u := range r.LocalAddresses(port) {
		if u != out[0] {
			out = append(out, u)
		}
	}
	return out
}

func ipOf(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	}
	return nil
}

// IsPortAvailable reports whether port can be bound on all interfaces.
func IsPortAvailable(port int) bool {
	return IsAddrAvailable("", port)
}

// IsAddrAvailable reports whether host:port can be bound right now.
// The probe binds and releases, so the answer can be stale by the time the
// caller binds.
func IsAddrAvailable(host string, port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

// FindAvailablePort returns the first free port in [start, start+maxAttempts).
func FindAvailablePort(start, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		port := start + i
		if port < 1 || port > 65535 {
			break
		}
		if IsPortAvailable(port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("%w in %d-%d", ErrNoAvailablePort, start, start+maxAttempts-1)
}
