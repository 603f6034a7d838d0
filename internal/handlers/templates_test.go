package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	constants "github.com/CodeAndHammer/parludo/internal/constants"
	engine "github.com/CodeAndHammer/parludo/internal/engine"
	game "github.com/CodeAndHammer/parludo/internal/game"
	models "github.com/CodeAndHammer/parludo/internal/models"
)

func newPageServer(t *testing.T) (*gin.Engine, *models.App) {
	t.Helper()
	tmpl, err := LoadTemplates("../../templates")
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	return newTestServerWith(t, tmpl)
}

// mismatchedPair returns two deck indices holding different pairs.
func mismatchedPair(play *models.Play) (int, int) {
	cards := play.Engine.View().Cards
	for i := 1; i < len(cards); i++ {
		if cards[i].PairID != cards[0].PairID {
			return 0, i
		}
	}
	panic("deck holds a single pair")
}

func TestHomePageRendersWithoutAudioAssets(t *testing.T) {
	router, _ := newPageServer(t)
	cl := &client{router: router}
	w := cl.do(http.MethodGet, constants.RouteHome, nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Board animals (16 cards)") {
		t.Error("board picker missing from home page")
	}
	if !strings.Contains(body, "Pick a board and start a new game.") {
		t.Error("expected the empty game prompt")
	}
	if strings.Contains(body, "/static/sounds/") {
		t.Error("page still references sound files")
	}
	if !strings.Contains(body, "AudioContext") {
		t.Error("page does not synthesize sound cues")
	}
}

func TestMismatchRendersTwoFailedCards(t *testing.T) {
	router, app := newPageServer(t)
	cl := &client{router: router}
	cl.do(http.MethodPost, constants.RouteNewGame, url.Values{"board_id": {"animals"}}, true)
	play := app.Plays[cl.sessionID()]
	a, b := mismatchedPair(play)

	cl.do(http.MethodPost, constants.RouteMarkCard, url.Values{"index": {fmt.Sprint(a)}}, true)
	w := cl.do(http.MethodPost, constants.RouteMarkCard, url.Values{"index": {fmt.Sprint(b)}}, true)
	body := w.Body.String()

	if n := strings.Count(body, `class="card failure"`); n != 2 {
		t.Errorf("failed cards rendered = %d, want 2", n)
	}
	if n := strings.Count(body, `class="card idle"`); n != 14 {
		t.Errorf("idle cards rendered = %d, want 14", n)
	}
	if !strings.Contains(body, `data-locked="true"`) {
		t.Error("board should render as locked during the reveal window")
	}

	cards := play.Engine.View().Cards
	for i, c := range cards {
		switch {
		case i == a || i == b:
			if !strings.Contains(body, c.Value) {
				t.Errorf("flipped card %d value %q not shown", i, c.Value)
			}
		case c.PairID != cards[a].PairID && c.PairID != cards[b].PairID:
			if strings.Contains(body, c.Value) {
				t.Errorf("idle card %d leaks value %q", i, c.Value)
			}
		}
	}
}

func TestRevertShowsIdleCardsOnNextRender(t *testing.T) {
	router, app := newPageServer(t)
	app.RevealDelay = 20 * time.Millisecond
	cl := &client{router: router}
	cl.do(http.MethodPost, constants.RouteNewGame, url.Values{"board_id": {"animals"}}, true)
	a, b := mismatchedPair(app.Plays[cl.sessionID()])
	cl.do(http.MethodPost, constants.RouteMarkCard, url.Values{"index": {fmt.Sprint(a)}}, true)
	cl.do(http.MethodPost, constants.RouteMarkCard, url.Values{"index": {fmt.Sprint(b)}}, true)

	deadline := time.Now().Add(2 * time.Second)
	var view game.PlayView
	for {
		w := cl.do(http.MethodGet, constants.RouteGameState, nil, false)
		view = game.PlayView{}
		if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
			t.Fatal(err)
		}
		if !view.Locked || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if view.Locked || view.Phase != engine.PhaseRunning {
		t.Fatalf("state after reveal window: locked=%v phase=%s", view.Locked, view.Phase)
	}
	if view.Cards[a].Status != engine.StatusIdle || view.Cards[b].Status != engine.StatusIdle {
		t.Fatalf("statuses = %s/%s, want idle/idle", view.Cards[a].Status, view.Cards[b].Status)
	}

	// The page compares these attributes against the polled state and
	// re-renders the grid from the home page when they differ.
	body := cl.do(http.MethodGet, constants.RouteHome, nil, false).Body.String()
	if strings.Contains(body, `data-status="failure"`) {
		t.Error("reverted cards still rendered as failed")
	}
	if !strings.Contains(body, `data-locked="false"`) {
		t.Error("board still rendered as locked")
	}
	if n := strings.Count(body, `data-status="idle"`); n != 16 {
		t.Errorf("idle cards rendered = %d, want 16", n)
	}
}

func TestCompletedPlayRendersFinishNotice(t *testing.T) {
	router, app := newPageServer(t)
	cl := &client{router: router}
	cl.do(http.MethodPost, constants.RouteNewGame, url.Values{"board_id": {"animals"}}, true)

	positions := map[string][]int{}
	for i, c := range app.Plays[cl.sessionID()].Engine.View().Cards {
		positions[c.PairID] = append(positions[c.PairID], i)
	}
	var body string
	for _, idx := range positions {
		for _, i := range idx {
			body = cl.do(http.MethodPost, constants.RouteMarkCard, url.Values{"index": {fmt.Sprint(i)}}, true).Body.String()
		}
	}

	if !strings.Contains(body, "All pairs found in") {
		t.Errorf("finish notice missing from %q", body)
	}
	if n := strings.Count(body, `class="card success"`); n != 16 {
		t.Errorf("matched cards rendered = %d, want 16", n)
	}
	if !strings.Contains(body, "Play again") {
		t.Error("completed play should offer to play again")
	}
}
