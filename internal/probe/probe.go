package probe

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	defaultTimeout = time.Second
	protocolICMP   = 1 // ipv4.ICMPTypeEcho.Protocol()
	payload        = "device-inventory-probe"
)

// Prober decides whether a device answers at the given address. Probe
// never fails: any error means the device is reported offline.
type Prober interface {
	Probe(ctx context.Context, ip string) bool
}

// Disabled is the Prober used when pinging is switched off. It reports
// every device offline.
type Disabled struct{}

// Probe always returns false.
func (Disabled) Probe(context.Context, string) bool { return false }

// ICMPProber sends a single ICMP echo request and waits for the matching
// reply until the timeout or the context deadline, whichever is sooner.
type ICMPProber struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewICMPProber creates a prober. A zero timeout means one second.
func NewICMPProber(timeout time.Duration, logger *zap.Logger) *ICMPProber {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ICMPProber{timeout: timeout, logger: logger}
}

// Probe reports whether ip answered one echo request.
func (p *ICMPProber) Probe(ctx context.Context, ip string) bool {
	ok, err := p.echo(ctx, ip)
	if err != nil {
		p.logger.Debug("probe failed", zap.String("ip", ip), zap.Error(err))
		return false
	}
	return ok
}

func (p *ICMPProber) echo(ctx context.Context, ip string) (bool, error) {
	dst := net.ParseIP(ip).To4()
	if dst == nil {
		return false, fmt.Errorf("not an IPv4 address: %q", ip)
	}

	conn, network, err := listen()
	if err != nil {
		return false, err
	}
	defer conn.Close()

	deadline := time.Now().Add(p.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return false, fmt.Errorf("set deadline: %w", err)
	}

	id := os.Getpid() & 0xffff
	seq := rand.Intn(1 << 16)
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: []byte(payload)},
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		return false, fmt.Errorf("marshal echo: %w", err)
	}

	var addr net.Addr = &net.IPAddr{IP: dst}
	if network == "udp4" {
		addr = &net.UDPAddr{IP: dst}
	}
	if _, err := conn.WriteTo(wb, addr); err != nil {
		return false, fmt.Errorf("send echo: %w", err)
	}

	rb := make([]byte, 1500)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		n, peer, err := conn.ReadFrom(rb)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return false, nil
			}
			return false, fmt.Errorf("read reply: %w", err)
		}

		if !peerIP(peer).Equal(dst) {
			continue
		}
		rm, err := icmp.ParseMessage(protocolICMP, rb[:n])
		if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		reply, ok := rm.Body.(*icmp.Echo)
		if !ok || reply.Seq != seq {
			continue
		}
		// Datagram sockets have their echo id rewritten by the kernel.
		if network == "udp4" || reply.ID == id {
			return true, nil
		}
	}
}

// listen prefers an unprivileged datagram ICMP socket and falls back to a
// raw socket, which needs CAP_NET_RAW.
func listen() (*icmp.PacketConn, string, error) {
	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err == nil {
		return conn, "udp4", nil
	}
	raw, rawErr := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if rawErr != nil {
		return nil, "", fmt.Errorf("open icmp socket: %w", errors.Join(err, rawErr))
	}
	return raw, "ip4:icmp", nil
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP
	case *net.IPAddr:
		return a.IP
	default:
		return nil
	}
}
