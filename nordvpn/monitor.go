package nordvpn

import (
	"context"
	"sync"
	"time"

	"github.com/yllada/nordvpn-gui/common"
)

// StatusPoller periodically re-reads `nordvpn status` so the UI
// tracks changes made outside the application, including connection
// drops.
type StatusPoller struct {
	client   *Client
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// OnChange is called with a session snapshot after every
	// successful poll where the state changed. Called from the
	// poller goroutine.
	OnChange func(SessionSnapshot)
	// OnDrop is called when a connection transitions from connected
	// to disconnected without a disconnect issued by this
	// application. Used for automatic reconnection.
	OnDrop func(last ServerRef)
}

// NewStatusPoller returns a poller for the given client.
func NewStatusPoller(client *Client) *StatusPoller {
	return &StatusPoller{
		client:   client,
		interval: common.StatusPollInterval,
	}
}

// SetInterval changes the polling interval. Takes effect on the next
// Start.
func (p *StatusPoller) SetInterval(interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if interval > 0 {
		p.interval = interval
	}
}

// Start begins polling in a background goroutine. Starting an already
// running poller is a no-op.
func (p *StatusPoller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.runLoop(p.stopCh, p.doneCh, p.interval)
	common.LogDebug("status poller started, interval %s", p.interval)
}

// Stop halts polling and waits for the poll goroutine to exit.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	<-done
	common.LogDebug("status poller stopped")
}

// IsRunning reports whether the poller is active.
func (p *StatusPoller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *StatusPoller) runLoop(stopCh <-chan struct{}, doneCh chan<- struct{}, interval time.Duration) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := p.client.Session().Snapshot()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			last = p.poll(last)
		}
	}
}

// poll runs one status read and fires callbacks on change.
func (p *StatusPoller) poll(last SessionSnapshot) SessionSnapshot {
	ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
	defer cancel()

	if _, err := p.client.Status(ctx); err != nil {
		// Transient failures leave the session as-is.
		common.LogDebug("status poll failed: %v", err)
		return last
	}

	current := p.client.Session().Snapshot()
	if !stateChanged(last, current) {
		return current
	}

	if last.Connection == StateConnected && current.Connection == StateDisconnected {
		common.LogWarn("connection to %s dropped", last.Status.Server.Label())
		if p.OnDrop != nil {
			p.OnDrop(last.Status.Server)
		}
	}

	if p.OnChange != nil {
		p.OnChange(current)
	}
	return current
}

func stateChanged(a, b SessionSnapshot) bool {
	return a.Connection != b.Connection ||
		a.Login != b.Login ||
		a.Status.Server != b.Status.Server ||
		a.Status.IP != b.Status.IP
}
