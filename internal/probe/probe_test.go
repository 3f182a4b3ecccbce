package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDisabled(t *testing.T) {
	assert.False(t, Disabled{}.Probe(context.Background(), "127.0.0.1"))
}

func TestICMPProber_InvalidAddressIsOffline(t *testing.T) {
	p := NewICMPProber(50*time.Millisecond, zap.NewNop())

	for _, ip := range []string{"", "999.1.1.1", "::1", "not-an-ip"} {
		assert.False(t, p.Probe(context.Background(), ip), ip)
	}
}

func TestICMPProber_CancelledContextIsOffline(t *testing.T) {
	p := NewICMPProber(time.Second, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.False(t, p.Probe(ctx, "192.0.2.1"))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewICMPProber_DefaultTimeout(t *testing.T) {
	assert.Equal(t, time.Second, NewICMPProber(0, zap.NewNop()).timeout)
}

func TestPeerIP(t *testing.T) {
	ip := net.IPv4(10, 0, 0, 1)
	assert.True(t, peerIP(&net.UDPAddr{IP: ip}).Equal(ip))
	assert.True(t, peerIP(&net.IPAddr{IP: ip}).Equal(ip))
	assert.Nil(t, peerIP(&net.TCPAddr{IP: ip}))
}
