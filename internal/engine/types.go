package engine

import "time"

type CardStatus string

const (
	StatusIdle     CardStatus = "idle"
	StatusSelected CardStatus = "selected"
	StatusSuccess  CardStatus = "success"
	StatusFailure  CardStatus = "failure"
)

// Phase is the session-level lifecycle stage.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseComplete Phase = "complete"
	PhaseTimedOut Phase = "timed_out"
	PhaseStopped  Phase = "stopped"
)

// Effect names a sound cue emitted on a state transition.
type Effect string

const (
	EffectSuccess Effect = "success"
	EffectFailure Effect = "failure"
	EffectFinish  Effect = "finish"
)

// EffectPlayer is the audio capability supplied by the host.
type EffectPlayer interface {
	Play(effect Effect)
}

// Pair is one deck input: Value is shown on both cards of the pair.
type Pair struct {
	PairID string `json:"pairId"`
	Value  string `json:"value"`
}

// Card is one face of the deck. Cards never change once a deck is built.
type Card struct {
	PairID   string `json:"pairId"`
	Value    string `json:"value"`
	Position int    `json:"position"`
}

type Options struct {
	Pairs []Pair
	// TimeLimit ends the session with a timeout once reached. Zero disables it.
	TimeLimit time.Duration
	// RevealDelay is how long a mismatched pair stays in failure before
	// flipping back.
	RevealDelay time.Duration
	Clock       Clock
	Effects     EffectPlayer
	OnFinish    func(elapsedMs int64)
	OnTimeout   func()
}

type CardView struct {
	PairID   string     `json:"pairId"`
	Value    string     `json:"value"`
	Position int        `json:"position"`
	Status   CardStatus `json:"status"`
}

// View is a read-only snapshot of the session for presentation.
type View struct {
	Cards        []CardView `json:"cards"`
	TimeSec      int        `json:"timeSec"`
	Running      bool       `json:"running"`
	Phase        Phase      `json:"phase"`
	MatchedPairs int        `json:"matchedPairs"`
	TotalPairs   int        `json:"totalPairs"`
	Locked       bool       `json:"locked"`
}
