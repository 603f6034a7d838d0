package constants

import "time"

type contextKey string

const (
	DefaultRevealDelay = 700 * time.Millisecond
	TickInterval       = time.Second
	ScoreSubmitTimeout = 5 * time.Second
)

const (
	SessionCookieName = "session_id"
	SoundCookieName   = "sound"
	CSRFCookieName    = "csrf_token"
)

const (
	RouteHome        = "/"
	RouteBoards      = "/boards"
	RouteNewGame     = "/game/new"
	RouteStartGame   = "/game/start"
	RouteStopGame    = "/game/stop"
	RouteResetGame   = "/game/reset"
	RouteMarkCard    = "/game/mark"
	RouteGameState   = "/game/state"
	RouteSoundPref   = "/preferences/sound"
	RouteScores      = "/scores/:boardID"
	RouteHealthz     = "/healthz"
	DefaultScoreRows = 10
	MaxScoreRows     = 50
)

const (
	ErrorCodeNoActiveGame  = "no_active_game"
	ErrorCodeBoardNotFound = "board_not_found"
	ErrorCodeInvalidIndex  = "invalid_index"
	ErrorCodeCardRejected  = "card_rejected"
)

const (
	NoticeComplete = "complete"
	NoticeTimeout  = "timeout"
)

const (
	RequestIDKey contextKey = "request_id"
)
