package tui

import (
	"sync"

	"github.com/emberly-app/emberly-stories/internal/page"
	"github.com/emberly-app/emberly-stories/internal/playback"
	"github.com/emberly-app/emberly-stories/internal/toast"
	tea "github.com/charmbracelet/bubbletea"
)

// StoriesMsg signals that the story list changed (fetch, viewed flags).
type StoriesMsg struct{}

// PlaybackMsg carries a fresh engine snapshot into the program loop.
type PlaybackMsg struct {
	Snap playback.Snapshot
}

// PlaybackClosedMsg signals the viewer session ended.
type PlaybackClosedMsg struct{}

// ToastsMsg carries the currently visible toasts.
type ToastsMsg struct {
	Active []toast.Toast
}

// Relay implements page.Listener by forwarding events into the
// bubbletea message loop. Events arriving before SetProgram are
// dropped; the first render pulls current state anyway.
type Relay struct {
	mu sync.Mutex
	p  *tea.Program
}

func NewRelay() *Relay {
	return &Relay{}
}

func (r *Relay) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

var _ page.Listener = (*Relay)(nil)

func (r *Relay) StoriesUpdated() {
	r.send(StoriesMsg{})
}

func (r *Relay) PlaybackUpdated(snap playback.Snapshot) {
	r.send(PlaybackMsg{Snap: snap})
}

func (r *Relay) PlaybackClosed() {
	r.send(PlaybackClosedMsg{})
}

func (r *Relay) ToastsChanged(active []toast.Toast) {
	r.send(ToastsMsg{Active: active})
}

func (r *Relay) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
