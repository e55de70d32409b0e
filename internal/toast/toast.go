package toast

import (
	"sync"
	"time"

	"github.com/emberly-app/emberly-stories/internal/config"
	"github.com/emberly-app/emberly-stories/pkg/logger"
	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"
)

type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

type Toast struct {
	ID      uint64
	Kind    Kind
	Message string
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
	Clock  clockwork.Clock
}

// Manager owns the transient notification queue. Every toast stays
// visible for the same fixed duration and expires on its own timer.
type Manager struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	duration time.Duration
	logger   logger.Logger

	nextID uint64
	active []Toast
	notify func(active []Toast)
}

func NewManager(opts Opts) *Manager {
	return &Manager{
		clock:    opts.Clock,
		duration: opts.Config.Toast.Duration,
		logger:   opts.Logger,
	}
}

// SetNotify registers the render-side listener. Called with the full
// visible set after every change, outside the manager lock.
func (m *Manager) SetNotify(fn func(active []Toast)) {
	m.mu.Lock()
	m.notify = fn
	m.mu.Unlock()
}

func (m *Manager) Info(msg string)    { m.push(KindInfo, msg) }
func (m *Manager) Success(msg string) { m.push(KindSuccess, msg) }
func (m *Manager) Error(msg string)   { m.push(KindError, msg) }

// Active returns a copy of the currently visible toasts.
func (m *Manager) Active() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Toast, len(m.active))
	copy(out, m.active)
	return out
}

func (m *Manager) push(kind Kind, msg string) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.active = append(m.active, Toast{ID: id, Kind: kind, Message: msg})
	m.clock.AfterFunc(m.duration, func() { m.expire(id) })
	notify, snapshot := m.notify, m.activeLocked()
	m.mu.Unlock()

	m.logger.Debug("Toast shown", "kind", kind, "message", msg)
	if notify != nil {
		notify(snapshot)
	}
}

func (m *Manager) expire(id uint64) {
	m.mu.Lock()
	kept := m.active[:0]
	for _, t := range m.active {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m.active = kept
	notify, snapshot := m.notify, m.activeLocked()
	m.mu.Unlock()

	if notify != nil {
		notify(snapshot)
	}
}

func (m *Manager) activeLocked() []Toast {
	out := make([]Toast, len(m.active))
	copy(out, m.active)
	return out
}
