package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds every network probe
	DefaultTimeout = 10 * time.Second

	// ServerSignature is sent in the Server header of our own status page.
	// A web probe that sees it has looped back to this process.
	ServerSignature = "lookout/1.0"

	// UserAgent identifies web probes
	UserAgent = "lookout-probe/1.0"

	maxResponse = 4096

	// responseIdle ends a reply once data has arrived and the peer goes
	// quiet without closing its side
	responseIdle = 250 * time.Millisecond
)

// Flavor selects the wire protocol a NetworkObserver speaks
type Flavor int

const (
	FlavorWeb Flavor = iota
	FlavorRouter
	FlavorRedis
	FlavorService
)

// String returns the config name of the flavor
func (f Flavor) String() string {
	switch f {
	case FlavorWeb:
		return "web"
	case FlavorRouter:
		return "router"
	case FlavorRedis:
		return "redis"
	case FlavorService:
		return "service"
	default:
		return fmt.Sprintf("flavor(%d)", int(f))
	}
}

// request returns the probe payload and whether to half-close afterwards
func (f Flavor) request() ([]byte, bool) {
	switch f {
	case FlavorWeb:
		return []byte("GET / HTTP/1.0\r\nHost: 127.0.0.1\r\nUser-Agent: " + UserAgent + "\r\n\r\n"), true
	case FlavorRouter:
		return []byte("LIST"), true
	case FlavorRedis:
		return []byte("PING\r\nQUIT\r\n"), false
	default:
		return []byte("PING\n"), true
	}
}

// Classify maps a complete response to a status. It is only called after a
// successful round trip; connection failures are always StatusDown.
func Classify(flavor Flavor, response []byte, signature string) Status {
	switch flavor {
	case FlavorWeb:
		if signature != "" && bytes.Contains(response, []byte("Server: "+signature)) {
			return StatusDown
		}
		if bytes.HasPrefix(response, []byte("HTTP/1")) && len(response) >= 12 && string(response[9:12]) == "200" {
			return StatusRunning
		}
		return StatusBroken
	case FlavorRouter:
		return StatusRunning
	case FlavorRedis:
		if bytes.HasPrefix(response, []byte("+PONG")) {
			return StatusRunning
		}
		return StatusBroken
	default:
		if len(response) > 5 && bytes.Contains(response, []byte("PONG")) {
			return StatusRunning
		}
		return StatusBroken
	}
}

// Dialer opens network connections
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// NetworkObserver probes a TCP service with a short request/response
// exchange
type NetworkObserver struct {
	identity
	flavor    Flavor
	host      string
	port      int
	timeout   time.Duration
	signature string
	dialer    Dialer
	clock     Clock
}

// NewNetworkObserver creates a network probe with a default target address
func NewNetworkObserver(flavor Flavor, id, name, host string, port int) *NetworkObserver {
	return &NetworkObserver{
		identity:  identity{name: name, id: id},
		flavor:    flavor,
		host:      host,
		port:      port,
		timeout:   DefaultTimeout,
		signature: ServerSignature,
		dialer:    &net.Dialer{},
		clock:     SystemClock{},
	}
}

// WithTimeout overrides the probe timeout
func (n *NetworkObserver) WithTimeout(timeout time.Duration) *NetworkObserver {
	if timeout > 0 {
		n.timeout = timeout
	}
	return n
}

// Flavor returns the wire protocol of the probe
func (n *NetworkObserver) Flavor() Flavor {
	return n.flavor
}

// Address returns the normalized host:port the probe dials
func (n *NetworkObserver) Address() string {
	return net.JoinHostPort(normalizeHost(n.host), strconv.Itoa(n.port))
}

// HandleConfiguration accepts <ID>.HOST and <ID>.PORT
func (n *NetworkObserver) HandleConfiguration(key, value string) (bool, error) {
	switch {
	case n.is(key, ".HOST"):
		n.host = strings.TrimSpace(value)
		return true, nil
	case n.is(key, ".PORT"):
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || port < 1 || port > 65535 {
			return true, fmt.Errorf("invalid port %q for %s", value, key)
		}
		n.port = port
		return true, nil
	}
	return false, nil
}

// Check performs one request/response exchange
func (n *NetworkObserver) Check(ctx context.Context) (Result, error) {
	return timedCheck(ctx, n.clock, n)
}

// CheckStatus dials the target, sends the flavor's request and classifies
// the reply. Every transport failure is reported as StatusDown. A reply
// ends at EOF or once the peer goes quiet after sending data, so a target
// that keeps its socket open still counts as answered.
func (n *NetworkObserver) CheckStatus(ctx context.Context) (Status, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	response, err := n.exchange(ctx)
	if err != nil {
		return StatusDown, nil
	}
	return Classify(n.flavor, response, n.signature), nil
}

func (n *NetworkObserver) exchange(ctx context.Context) ([]byte, error) {
	conn, err := n.dialer.DialContext(ctx, "tcp", n.Address())
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, err
		}
	}

	payload, halfClose := n.flavor.request()
	if _, err := conn.Write(payload); err != nil {
		return nil, err
	}

	if halfClose {
		if cw, ok := conn.(interface{ CloseWrite() error }); ok {
			if err := cw.CloseWrite(); err != nil {
				return nil, err
			}
		}
	}

	buf := make([]byte, maxResponse)
	total := 0
	for total < len(buf) {
		read, err := conn.Read(buf[total:])
		total += read
		if errors.Is(err, io.EOF) {
			break
		}
		var netErr net.Error
		if total > 0 && errors.As(err, &netErr) && netErr.Timeout() {
			break
		}
		if err != nil {
			return nil, err
		}

		if read > 0 {
			idle := time.Now().Add(responseIdle)
			if deadline, ok := ctx.Deadline(); ok && deadline.Before(idle) {
				idle = deadline
			}
			if err := conn.SetReadDeadline(idle); err != nil {
				return nil, err
			}
		}
	}

	return buf[:total], nil
}

// normalizeHost maps an all-zero address such as 0.0.0.0 to loopback
func normalizeHost(host string) string {
	if host != "" && strings.Trim(host, "0.") == "" && strings.Contains(host, "0") {
		return "127.0.0.1"
	}
	return host
}
