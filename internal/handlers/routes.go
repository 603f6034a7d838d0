package handlers

import (
	"github.com/gin-gonic/gin"

	constants "github.com/CodeAndHammer/parludo/internal/constants"
	models "github.com/CodeAndHammer/parludo/internal/models"
)

// RegisterRoutes mounts every game route. limit guards state-changing
// routes and may be nil.
func RegisterRoutes(router gin.IRouter, app *models.App, limit gin.HandlerFunc) {
	with := func(h func(*models.App, *gin.Context)) gin.HandlerFunc {
		return func(c *gin.Context) { h(app, c) }
	}
	post := func(path string, h func(*models.App, *gin.Context)) {
		if limit != nil {
			router.POST(path, limit, with(h))
			return
		}
		router.POST(path, with(h))
	}

	router.GET(constants.RouteHome, with(HomeHandler))
	router.GET(constants.RouteBoards, with(BoardsHandler))
	router.GET(constants.RouteGameState, with(GameStateHandler))
	router.GET(constants.RouteScores, with(ScoresHandler))
	router.GET(constants.RouteHealthz, with(HealthzHandler))

	post(constants.RouteNewGame, NewGameHandler)
	post(constants.RouteStartGame, StartGameHandler)
	post(constants.RouteStopGame, StopGameHandler)
	post(constants.RouteResetGame, ResetGameHandler)
	post(constants.RouteMarkCard, MarkCardHandler)
	post(constants.RouteSoundPref, SoundPreferenceHandler)
}
