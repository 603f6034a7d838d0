package models

import (
	"slices"
	"testing"

	engine "github.com/CodeAndHammer/parludo/internal/engine"
)

func TestEffectLogDrain(t *testing.T) {
	log := NewEffectLog(false)
	log.Play(engine.EffectSuccess)
	log.Play(engine.EffectFailure)

	got := log.Drain()
	want := []engine.Effect{engine.EffectSuccess, engine.EffectFailure}
	if !slices.Equal(got, want) {
		t.Errorf("Drain() = %v, want %v", got, want)
	}
	if again := log.Drain(); len(again) != 0 {
		t.Errorf("second Drain() = %v, want empty", again)
	}
}

func TestEffectLogMuted(t *testing.T) {
	log := NewEffectLog(true)
	log.Play(engine.EffectFinish)
	if got := log.Drain(); len(got) != 0 {
		t.Errorf("muted log recorded %v", got)
	}

	log.SetMuted(false)
	log.Play(engine.EffectFinish)
	log.SetMuted(true)
	if got := log.Drain(); len(got) != 0 {
		t.Errorf("muting should drop pending cues, got %v", got)
	}
}

func TestEffectLogBounded(t *testing.T) {
	log := NewEffectLog(false)
	for i := 0; i < maxPendingEffects+5; i++ {
		log.Play(engine.EffectSuccess)
	}
	log.Play(engine.EffectFinish)
	got := log.Drain()
	if len(got) != maxPendingEffects {
		t.Fatalf("len = %d, want %d", len(got), maxPendingEffects)
	}
	if got[len(got)-1] != engine.EffectFinish {
		t.Errorf("newest cue dropped: %v", got)
	}
}

func TestPlayNotice(t *testing.T) {
	p := &Play{}
	if p.Notice() != "" {
		t.Error("new play should have no notice")
	}
	p.SetNotice("timeout")
	if p.Notice() != "timeout" {
		t.Errorf("Notice() = %q", p.Notice())
	}
}
