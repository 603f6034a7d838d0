package game

import (
	"github.com/samber/lo"

	engine "github.com/CodeAndHammer/parludo/internal/engine"
	models "github.com/CodeAndHammer/parludo/internal/models"
	util "github.com/CodeAndHammer/parludo/internal/util"
)

// CardView is the client-facing card. Value is only sent for face-up cards.
type CardView struct {
	Index  int               `json:"index"`
	Status engine.CardStatus `json:"status"`
	Value  string            `json:"value,omitempty"`
	Hint   string            `json:"hint,omitempty"`
}

type PlayView struct {
	PlayID       string          `json:"playId"`
	BoardID      string          `json:"boardId"`
	BoardTitle   string          `json:"boardTitle"`
	Cards        []CardView      `json:"cards"`
	TimeSec      int             `json:"timeSec"`
	Clock        string          `json:"clock"`
	TimeLimitSec int             `json:"timeLimitSec,omitempty"`
	Running      bool            `json:"running"`
	Phase        engine.Phase    `json:"phase"`
	MatchedPairs int             `json:"matchedPairs"`
	TotalPairs   int             `json:"totalPairs"`
	Locked       bool            `json:"locked"`
	Notice       string          `json:"notice,omitempty"`
	Effects      []engine.Effect `json:"effects,omitempty"`
	Muted        bool            `json:"muted"`
}

// Project builds the view model for play. When drain is set, pending sound
// cues are moved into the view.
func Project(app *models.App, play *models.Play, drain bool) PlayView {
	v := play.Engine.View()
	cards := lo.Map(v.Cards, func(c engine.CardView, i int) CardView {
		cv := CardView{Index: i, Status: c.Status}
		if c.Status != engine.StatusIdle {
			cv.Value = c.Value
		}
		if c.Status == engine.StatusSuccess {
			cv.Hint = play.Definitions[c.PairID]
		}
		return cv
	})
	view := PlayView{
		PlayID:       play.ID,
		BoardID:      play.Board.ID,
		BoardTitle:   play.Board.Title,
		Cards:        cards,
		TimeSec:      v.TimeSec,
		Clock:        util.FormatClock(v.TimeSec),
		TimeLimitSec: int(TimeLimit(app, play.Board).Seconds()),
		Running:      v.Running,
		Phase:        v.Phase,
		MatchedPairs: v.MatchedPairs,
		TotalPairs:   v.TotalPairs,
		Locked:       v.Locked,
		Notice:       play.Notice(),
		Muted:        play.Effects.Muted(),
	}
	if drain {
		view.Effects = play.Effects.Drain()
	}
	return view
}
