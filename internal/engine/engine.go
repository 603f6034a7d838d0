// Package engine runs a single play-through of a pairs board: deck
// construction, card selection and matching, the session timer, and the
// finish and timeout transitions.
package engine

import (
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/samber/lo/mutable"

	constants "github.com/CodeAndHammer/parludo/internal/constants"
)

// BuildDeck returns two cards per pair in uniformly random order.
func BuildDeck(pairs []Pair) []Card {
	deck := make([]Card, 0, len(pairs)*2)
	for _, p := range pairs {
		deck = append(deck, Card{PairID: p.PairID, Value: p.Value}, Card{PairID: p.PairID, Value: p.Value})
	}
	mutable.Shuffle(deck)
	for i := range deck {
		deck[i].Position = i
	}
	return deck
}

type Engine struct {
	mu   sync.Mutex
	opts Options

	cards   []Card
	status  map[int]CardStatus
	matched map[string]struct{}
	first   int
	locked  bool
	timeSec int
	phase   Phase

	startedAt time.Time
	// generation identifies the current session; scheduled actions carrying
	// an older value are ignored.
	generation uint64
	tick       Task
	revert     Task
}

func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.RevealDelay <= 0 {
		opts.RevealDelay = constants.DefaultRevealDelay
	}
	if opts.TimeLimit < 0 {
		opts.TimeLimit = 0
	}
	e := &Engine{opts: opts}
	e.clearLocked()
	return e
}

// Start begins a fresh session with a newly shuffled deck. It does nothing
// while a session is already running.
func (e *Engine) Start() {
	var after []func()
	e.mu.Lock()
	if e.phase == PhaseRunning {
		e.mu.Unlock()
		return
	}
	e.clearLocked()
	e.cards = BuildDeck(e.opts.Pairs)
	for i := range e.cards {
		e.status[i] = StatusIdle
	}
	e.startedAt = e.opts.Clock.Now()
	if len(e.cards) == 0 {
		e.phase = PhaseComplete
		after = e.finishCallbacks(0)
	} else {
		e.phase = PhaseRunning
		e.scheduleTickLocked()
	}
	e.mu.Unlock()
	runAll(after)
}

// Stop freezes a running session in place. Card state is kept for display.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseRunning {
		return
	}
	e.cancelTasksLocked()
	e.phase = PhaseStopped
}

// Reset returns the engine to its pre-session state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearLocked()
}

// Close tears down scheduled work when the hosting view goes away.
func (e *Engine) Close() {
	e.Reset()
}

// MarkCard handles a click on the card at index and reports whether the
// click was accepted. Clicks that do not apply to the current state are
// ignored.
func (e *Engine) MarkCard(index int) bool {
	var after []func()
	e.mu.Lock()
	if e.phase != PhaseRunning || e.locked || index < 0 || index >= len(e.cards) {
		e.mu.Unlock()
		return false
	}
	switch e.status[index] {
	case StatusSuccess, StatusSelected, StatusFailure:
		e.mu.Unlock()
		return false
	}

	if e.first < 0 {
		e.status[index] = StatusSelected
		e.first = index
		e.mu.Unlock()
		return true
	}

	first := e.first
	e.first = -1
	if e.cards[first].PairID == e.cards[index].PairID {
		e.status[first] = StatusSuccess
		e.status[index] = StatusSuccess
		e.matched[e.cards[index].PairID] = struct{}{}
		after = append(after, e.effect(EffectSuccess))
		if len(e.matched)*2 == len(e.cards) {
			e.cancelTasksLocked()
			e.phase = PhaseComplete
			elapsed := e.opts.Clock.Now().Sub(e.startedAt).Milliseconds()
			after = append(after, e.finishCallbacks(elapsed)...)
		}
	} else {
		e.status[first] = StatusFailure
		e.status[index] = StatusFailure
		e.locked = true
		after = append(after, e.effect(EffectFailure))
		gen := e.generation
		e.revert = e.opts.Clock.AfterFunc(e.opts.RevealDelay, func() {
			e.revertFailure(gen, first, index)
		})
	}
	e.mu.Unlock()
	runAll(after)
	return true
}

func (e *Engine) revertFailure(gen uint64, a, b int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation || !e.locked {
		return
	}
	e.status[a] = StatusIdle
	e.status[b] = StatusIdle
	e.locked = false
	e.revert = nil
}

func (e *Engine) scheduleTickLocked() {
	gen := e.generation
	next := e.startedAt.Add(time.Duration(e.timeSec+1) * constants.TickInterval)
	d := next.Sub(e.opts.Clock.Now())
	if d < 0 {
		d = 0
	}
	e.tick = e.opts.Clock.AfterFunc(d, func() { e.onTick(gen) })
}

func (e *Engine) onTick(gen uint64) {
	var after []func()
	e.mu.Lock()
	if gen != e.generation || e.phase != PhaseRunning {
		e.mu.Unlock()
		return
	}
	e.timeSec++
	if e.opts.TimeLimit > 0 && time.Duration(e.timeSec)*constants.TickInterval >= e.opts.TimeLimit {
		e.cancelTasksLocked()
		e.phase = PhaseTimedOut
		if e.opts.OnTimeout != nil {
			after = append(after, e.opts.OnTimeout)
		}
	} else {
		e.scheduleTickLocked()
	}
	e.mu.Unlock()
	runAll(after)
}

// cancelTasksLocked stops pending actions and starts a new generation so any
// action already past its Stop point becomes a no-op.
func (e *Engine) cancelTasksLocked() {
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}
	if e.revert != nil {
		e.revert.Stop()
		e.revert = nil
	}
	e.generation++
}

func (e *Engine) clearLocked() {
	e.cancelTasksLocked()
	e.cards = nil
	e.status = make(map[int]CardStatus)
	e.matched = make(map[string]struct{})
	e.first = -1
	e.locked = false
	e.timeSec = 0
	e.phase = PhaseIdle
	e.startedAt = time.Time{}
}

func (e *Engine) finishCallbacks(elapsedMs int64) []func() {
	after := []func(){e.effect(EffectFinish)}
	if e.opts.OnFinish != nil {
		onFinish := e.opts.OnFinish
		after = append(after, func() { onFinish(elapsedMs) })
	}
	return after
}

func (e *Engine) effect(effect Effect) func() {
	player := e.opts.Effects
	return func() {
		if player != nil {
			player.Play(effect)
		}
	}
}

func runAll(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}

func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Engine) Running() bool {
	return e.Phase() == PhaseRunning
}

func (e *Engine) TimeSec() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeSec
}

func (e *Engine) MatchedPairs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.matched)
}

func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	cards := lo.Map(e.cards, func(c Card, i int) CardView {
		return CardView{PairID: c.PairID, Value: c.Value, Position: c.Position, Status: e.status[i]}
	})
	return View{
		Cards:        cards,
		TimeSec:      e.timeSec,
		Running:      e.phase == PhaseRunning,
		Phase:        e.phase,
		MatchedPairs: len(e.matched),
		TotalPairs:   len(e.cards) / 2,
		Locked:       e.locked,
	}
}
