// Package game hosts session engines for browser sessions and connects their
// lifecycle callbacks to scoring and notices.
package game

import (
	"context"
	"crypto/rand"
	"math/big"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/parludo/internal/constants"
	engine "github.com/CodeAndHammer/parludo/internal/engine"
	models "github.com/CodeAndHammer/parludo/internal/models"
	scores "github.com/CodeAndHammer/parludo/internal/scores"
	util "github.com/CodeAndHammer/parludo/internal/util"
)

func GetBoard(app *models.App, boardID string) (models.Board, bool) {
	board, ok := app.BoardIndex[boardID]
	return board, ok
}

func GetRandomBoard(app *models.App, ctx context.Context) models.Board {
	log := util.RequestLogger(ctx)

	select {
	case <-ctx.Done():
		log.Warnf("GetRandomBoard cancelled: %v", ctx.Err())
		return app.Boards[0]
	default:
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(app.Boards))))
	if err != nil {
		log.Warnf("Error generating random number: %v, using fallback", err)
		return app.Boards[0]
	}

	log.Infof("Selected random board index: %d", n.Int64())
	return app.Boards[n.Int64()]
}

// GetRandomBoardExcluding picks a board the player has not finished yet. The
// second result is true when every board has been played and the history
// should be cleared.
func GetRandomBoardExcluding(app *models.App, ctx context.Context, playedIDs []string) (models.Board, bool) {
	log := util.RequestLogger(ctx)

	if len(playedIDs) == 0 {
		return GetRandomBoard(app, ctx), false
	}

	available := lo.Filter(app.Boards, func(b models.Board, _ int) bool {
		return !slices.Contains(playedIDs, b.ID)
	})

	if len(available) == 0 {
		log.Infof("All boards played, reset needed. Total boards: %d, Played: %d", len(app.Boards), len(playedIDs))
		return GetRandomBoard(app, ctx), true
	}

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(available))))
	if err != nil {
		log.Warnf("Error generating random number for filtered boards: %v, using fallback", err)
		return available[0], false
	}

	selected := available[n.Int64()]
	log.Infof("Selected board from %d available options (excluding %d played): %s", len(available), len(playedIDs), selected.ID)
	return selected, false
}

// DealPairs picks cardCount/2 pairs from the board, sampling when the board
// holds more than it needs.
func DealPairs(board models.Board) []models.Pair {
	need := board.CardCount / 2
	if len(board.Pairs) <= need {
		return slices.Clone(board.Pairs)
	}
	return lo.Samples(board.Pairs, need)
}

// TimeLimit resolves the board's limit, falling back to the configured
// default. Zero means no limit.
func TimeLimit(app *models.App, board models.Board) time.Duration {
	if board.TimeLimitSec > 0 {
		return time.Duration(board.TimeLimitSec) * time.Second
	}
	return app.DefaultLimit
}

// NewPlay builds a play for the session and wires its engine callbacks. The
// engine is not started.
func NewPlay(app *models.App, ctx context.Context, sessionID string, board models.Board, muted bool) *models.Play {
	return newPlay(app, ctx, sessionID, board, muted, nil)
}

func newPlay(app *models.App, ctx context.Context, sessionID string, board models.Board, muted bool, clock engine.Clock) *models.Play {
	dealt := DealPairs(board)
	play := &models.Play{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Board:     board,
		Effects:   models.NewEffectLog(muted),
		Definitions: lo.Associate(dealt, func(p models.Pair) (string, string) {
			return p.ID, p.Definition
		}),
		LastAccessTime: time.Now(),
	}
	reqID, _ := ctx.Value(constants.RequestIDKey).(string)

	play.Engine = engine.New(engine.Options{
		Pairs: lo.Map(dealt, func(p models.Pair, _ int) engine.Pair {
			return engine.Pair{PairID: p.ID, Value: p.Term}
		}),
		TimeLimit:   TimeLimit(app, board),
		RevealDelay: app.RevealDelay,
		Clock:       clock,
		Effects:     play.Effects,
		OnFinish: func(elapsedMs int64) {
			play.SetNotice(constants.NoticeComplete)
			submitScore(app, reqID, play, elapsedMs)
		},
		OnTimeout: func() {
			play.SetNotice(constants.NoticeTimeout)
			util.Logger().WithField("request_id", reqID).Infof("Play %s on board %s timed out", play.ID, board.ID)
		},
	})

	util.RequestLogger(ctx).Infof("New play %s created for session %s on board %s (%d pairs)", play.ID, sessionID, board.ID, len(dealt))
	return play
}

func submitScore(app *models.App, reqID string, play *models.Play, elapsedMs int64) {
	log := util.Logger().WithField("request_id", reqID)
	if app.Scores == nil {
		log.Warnf("No score store configured, dropping result for play %s", play.ID)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), constants.ScoreSubmitTimeout)
	defer cancel()

	score := &scores.Score{
		BoardID:   play.Board.ID,
		SessionID: play.SessionID,
		PlayID:    play.ID,
		ElapsedMs: elapsedMs,
		CardCount: play.Board.CardCount,
	}
	if err := app.Scores.Submit(ctx, score); err != nil {
		log.Errorf("Failed to submit score for play %s: %v", play.ID, err)
		return
	}
	log.Infof("Play %s finished board %s in %dms", play.ID, play.Board.ID, elapsedMs)
}

// Restart begins a fresh shuffled session on an existing play.
func Restart(play *models.Play) {
	play.SetNotice("")
	play.Effects.Drain()
	if play.Engine.Running() {
		play.Engine.Stop()
	}
	play.Engine.Start()
}
