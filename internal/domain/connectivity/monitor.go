// internal/domain/connectivity/monitor.go
package connectivity

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Monitor tracks whether the remote store is reachable. Two sources feed it:
// transport-level events (SetOnline) and the outcome of the most recent
// remote call (ReportSuccess / ReportFailure). A failed call demotes the
// signal even while the transport still claims a connection, which is what a
// captive portal or an unreachable server looks like from the register.
//
// It is process-scoped state, constructed at startup and injected into its
// consumers, never read from a global.
type Monitor struct {
	mu     sync.Mutex
	online bool
	logger *logrus.Logger

	nextID int
	subs   map[int]chan bool
}

// NewMonitor starts in the online state; the first failed call corrects an
// optimistic boot.
func NewMonitor(logger *logrus.Logger) *Monitor {
	return &Monitor{
		online: true,
		logger: logger,
		subs:   make(map[int]chan bool),
	}
}

// Online returns the current signal.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline feeds a transport-level connectivity event.
func (m *Monitor) SetOnline(online bool) {
	m.transition(online)
}

// ReportSuccess records a completed remote call, which proves reachability.
func (m *Monitor) ReportSuccess() {
	m.transition(true)
}

// ReportFailure records a failed remote call and demotes the signal.
func (m *Monitor) ReportFailure() {
	m.transition(false)
}

// Subscribe registers for transition events. Only actual changes are
// delivered; repeated identical states are suppressed. The returned function
// removes the subscription and closes the channel.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan bool, 4)
	m.subs[id] = ch

	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

func (m *Monitor) transition(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return
	}
	m.online = online

	if m.logger != nil {
		m.logger.WithField("online", online).Info("connectivity changed")
	}

	for _, ch := range m.subs {
		select {
		case ch <- online:
		default:
		}
	}
}
