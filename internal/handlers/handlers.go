package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	boards "github.com/CodeAndHammer/parludo/internal/boards"
	constants "github.com/CodeAndHammer/parludo/internal/constants"
	game "github.com/CodeAndHammer/parludo/internal/game"
	models "github.com/CodeAndHammer/parludo/internal/models"
	session "github.com/CodeAndHammer/parludo/internal/session"
	util "github.com/CodeAndHammer/parludo/internal/util"
)

const pageTitle = "Parludo - Match the Pairs"

type markRequest struct {
	Index *int `form:"index" binding:"required"`
}

type soundRequest struct {
	Enabled bool `form:"enabled"`
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func csrfToken(c *gin.Context) string {
	token, _ := c.Cookie(constants.CSRFCookieName)
	if token == "" {
		token = c.GetString(constants.CSRFCookieName)
	}
	return token
}

func pageData(app *models.App, c *gin.Context, play *models.Play, errCode string) gin.H {
	data := gin.H{
		"title":      pageTitle,
		"boards":     boards.Summaries(app.Boards),
		"csrf_token": csrfToken(c),
		"error_code": errCode,
		"muted":      session.SoundMuted(c),
	}
	if play != nil {
		data["play"] = game.Project(app, play, false)
	}
	return data
}

// respond renders the game partial for HTMX requests and redirects plain
// form posts back home.
func respond(app *models.App, c *gin.Context, play *models.Play, errCode string) {
	if errCode != "" {
		payload := map[string]string{"server_error_code": errCode}
		if b, err := json.Marshal(payload); err == nil {
			c.Header("HX-Trigger", string(b))
		} else {
			util.LogWarn("Failed to marshal HX-Trigger payload: %v", err)
		}
	}
	if isHTMX(c) {
		c.HTML(http.StatusOK, "game-content", pageData(app, c, play, errCode))
		return
	}
	c.Redirect(http.StatusSeeOther, constants.RouteHome)
}

func HomeHandler(app *models.App, c *gin.Context) {
	sessionID := session.GetOrCreateSession(app, c)
	play, _ := session.GetPlay(app, sessionID)
	c.HTML(http.StatusOK, "index.html", pageData(app, c, play, ""))
}

func BoardsHandler(app *models.App, c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"boards": boards.Summaries(app.Boards)})
}

func NewGameHandler(app *models.App, c *gin.Context) {
	ctx := c.Request.Context()
	log := util.RequestLogger(ctx)
	sessionID := session.GetOrCreateSession(app, c)

	var board models.Board
	if boardID := c.PostForm("board_id"); boardID != "" {
		var ok bool
		board, ok = game.GetBoard(app, boardID)
		if !ok {
			log.Warnf("Session %s requested unknown board %q", sessionID, boardID)
			play, _ := session.GetPlay(app, sessionID)
			respond(app, c, play, constants.ErrorCodeBoardNotFound)
			return
		}
	} else {
		var played []string
		if raw := c.PostForm("played"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &played); err != nil {
				log.Warnf("Failed to parse played boards: %v", err)
				played = nil
			}
			played = lo.Filter(played, func(id string, _ int) bool {
				_, ok := app.BoardIndex[id]
				return ok
			})
		}
		var needsReset bool
		board, needsReset = game.GetRandomBoardExcluding(app, ctx, played)
		if needsReset {
			c.Header("HX-Trigger", "clear-played-boards")
		}
	}

	play := game.NewPlay(app, ctx, sessionID, board, session.SoundMuted(c))
	session.SavePlay(app, sessionID, play)
	play.Engine.Start()
	respond(app, c, play, "")
}

func StartGameHandler(app *models.App, c *gin.Context) {
	sessionID := session.GetOrCreateSession(app, c)
	play, ok := session.GetPlay(app, sessionID)
	if !ok {
		respond(app, c, nil, constants.ErrorCodeNoActiveGame)
		return
	}
	game.Restart(play)
	util.RequestLogger(c.Request.Context()).Infof("Session %s restarted play %s", sessionID, play.ID)
	respond(app, c, play, "")
}

func StopGameHandler(app *models.App, c *gin.Context) {
	sessionID := session.GetOrCreateSession(app, c)
	play, ok := session.GetPlay(app, sessionID)
	if !ok {
		respond(app, c, nil, constants.ErrorCodeNoActiveGame)
		return
	}
	play.Engine.Stop()
	respond(app, c, play, "")
}

func ResetGameHandler(app *models.App, c *gin.Context) {
	sessionID := session.GetOrCreateSession(app, c)
	play, ok := session.GetPlay(app, sessionID)
	if !ok {
		respond(app, c, nil, constants.ErrorCodeNoActiveGame)
		return
	}
	play.Engine.Reset()
	play.SetNotice("")
	play.Effects.Drain()
	respond(app, c, play, "")
}

func MarkCardHandler(app *models.App, c *gin.Context) {
	sessionID := session.GetOrCreateSession(app, c)
	play, ok := session.GetPlay(app, sessionID)
	if !ok {
		respond(app, c, nil, constants.ErrorCodeNoActiveGame)
		return
	}

	var req markRequest
	if err := c.ShouldBind(&req); err != nil {
		util.LogWarn("Session %s sent invalid mark request: %v", sessionID, err)
		respond(app, c, play, constants.ErrorCodeInvalidIndex)
		return
	}
	if !play.Engine.MarkCard(*req.Index) {
		respond(app, c, play, constants.ErrorCodeCardRejected)
		return
	}
	respond(app, c, play, "")
}

func GameStateHandler(app *models.App, c *gin.Context) {
	sessionID := session.GetOrCreateSession(app, c)
	play, ok := session.GetPlay(app, sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrorCodeNoActiveGame})
		return
	}
	c.JSON(http.StatusOK, game.Project(app, play, true))
}

func SoundPreferenceHandler(app *models.App, c *gin.Context) {
	var req soundRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session.SetSoundPreference(app, c, req.Enabled)
	sessionID := session.GetOrCreateSession(app, c)
	if play, ok := session.GetPlay(app, sessionID); ok {
		play.Effects.SetMuted(!req.Enabled)
	}
	c.JSON(http.StatusOK, gin.H{"sound": req.Enabled})
}

func ScoresHandler(app *models.App, c *gin.Context) {
	boardID := c.Param("boardID")
	if _, ok := game.GetBoard(app, boardID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": constants.ErrorCodeBoardNotFound})
		return
	}
	limit := constants.DefaultScoreRows
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, constants.MaxScoreRows)
		}
	}
	top, err := app.Scores.Top(c.Request.Context(), boardID, limit)
	if err != nil {
		util.RequestLogger(c.Request.Context()).Errorf("Failed to load scores for %s: %v", boardID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load scores"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"boardId": boardID, "scores": top})
}

func HealthzHandler(app *models.App, c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(app.StartTime)

	app.LimiterMutex.RLock()
	limiterCount := len(app.LimiterMap)
	app.LimiterMutex.RUnlock()

	scoreCount, err := app.Scores.Count(c.Request.Context())
	status := "ok"
	if err != nil {
		util.LogWarn("Score store health check failed: %v", err)
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"env":             map[bool]string{true: "production", false: "development"}[app.IsProduction],
		"boards_loaded":   len(app.Boards),
		"active_sessions": session.PlayCount(app),
		"active_limiters": limiterCount,
		"scores_recorded": scoreCount,
		"memory_alloc_mb": m.Alloc / 1024 / 1024,
		"memory_sys_mb":   m.Sys / 1024 / 1024,
		"memory_gc_count": m.NumGC,
		"uptime":          util.FormatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}
