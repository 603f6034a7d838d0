package models

import (
	"sync"

	engine "github.com/CodeAndHammer/parludo/internal/engine"
)

const maxPendingEffects = 16

// EffectLog collects sound cues for the client to play on its next poll.
// It satisfies engine.EffectPlayer.
type EffectLog struct {
	mu      sync.Mutex
	muted   bool
	pending []engine.Effect
}

func NewEffectLog(muted bool) *EffectLog {
	return &EffectLog{muted: muted}
}

func (l *EffectLog) Play(effect engine.Effect) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.muted {
		return
	}
	if len(l.pending) >= maxPendingEffects {
		l.pending = l.pending[1:]
	}
	l.pending = append(l.pending, effect)
}

// Drain returns and clears the pending cues.
func (l *EffectLog) Drain() []engine.Effect {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

func (l *EffectLog) SetMuted(muted bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.muted = muted
	if muted {
		l.pending = nil
	}
}

func (l *EffectLog) Muted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.muted
}
