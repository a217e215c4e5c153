package lookup

import (
	"net"
	"sync"
	"time"
)

// ConnectivityProbe reports whether the runtime currently has network
// connectivity. The orchestrator consults it before touching the network
// so an offline machine fails fast instead of timing out.
type ConnectivityProbe interface {
	Online() bool
}

// StaticProbe always reports the same state. Used by tests and by the
// one-shot CLI path where a dial probe would only add latency.
type StaticProbe bool

func (p StaticProbe) Online() bool { return bool(p) }

// DialProbe checks connectivity by dialing a well-known address, caching
// the verdict for a short TTL so repeated submissions stay cheap.
type DialProbe struct {
	Address string
	Timeout time.Duration
	TTL     time.Duration

	mu        sync.Mutex
	checkedAt time.Time
	online    bool
}

func NewDialProbe(address string, timeout, ttl time.Duration) *DialProbe {
	if address == "" {
		address = "1.1.1.1:53"
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DialProbe{Address: address, Timeout: timeout, TTL: ttl}
}

func (p *DialProbe) Online() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if !p.checkedAt.IsZero() && now.Sub(p.checkedAt) < p.TTL {
		return p.online
	}

	conn, err := net.DialTimeout("tcp", p.Address, p.Timeout)
	if err == nil {
		conn.Close()
	}

	p.checkedAt = now
	p.online = err == nil
	return p.online
}
