package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	constants "github.com/CodeAndHammer/parludo/internal/constants"
	models "github.com/CodeAndHammer/parludo/internal/models"
	util "github.com/CodeAndHammer/parludo/internal/util"
)

func GetOrCreateSession(app *models.App, c *gin.Context) string {
	sessionID, err := c.Cookie(constants.SessionCookieName)
	if err != nil || len(sessionID) < 10 {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteStrictMode)
		secure := app.IsProduction
		c.SetCookie(constants.SessionCookieName, sessionID, int(app.CookieMaxAge.Seconds()), "/", "", secure, true)
		util.LogInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// SoundMuted reads the sound preference cookie. Sound is on unless the
// player turned it off.
func SoundMuted(c *gin.Context) bool {
	v, err := c.Cookie(constants.SoundCookieName)
	return err == nil && v == "off"
}

func SetSoundPreference(app *models.App, c *gin.Context, enabled bool) {
	value := "on"
	if !enabled {
		value = "off"
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(constants.SoundCookieName, value, int((365 * 24 * time.Hour).Seconds()), "/", "", app.IsProduction, false)
}

func GetPlay(app *models.App, sessionID string) (*models.Play, bool) {
	app.SessionMutex.RLock()
	play, exists := app.Plays[sessionID]
	app.SessionMutex.RUnlock()
	if !exists {
		return nil, false
	}
	app.SessionMutex.Lock()
	play.LastAccessTime = time.Now()
	app.SessionMutex.Unlock()
	return play, true
}

// SavePlay stores play for the session, closing any play it replaces.
func SavePlay(app *models.App, sessionID string, play *models.Play) {
	app.SessionMutex.Lock()
	old, exists := app.Plays[sessionID]
	app.Plays[sessionID] = play
	play.LastAccessTime = time.Now()
	app.SessionMutex.Unlock()
	if exists && old != play {
		old.Engine.Close()
	}
	util.LogInfo("Updated in-memory play for session: %s", sessionID)
}

func DropPlay(app *models.App, sessionID string) {
	app.SessionMutex.Lock()
	play, exists := app.Plays[sessionID]
	delete(app.Plays, sessionID)
	app.SessionMutex.Unlock()
	if exists {
		play.Engine.Close()
		util.LogInfo("Dropped play for session: %s", sessionID)
	}
}

func PlayCount(app *models.App) int {
	app.SessionMutex.RLock()
	defer app.SessionMutex.RUnlock()
	return len(app.Plays)
}

func CleanupExpiredSessions(app *models.App) int {
	app.SessionMutex.Lock()
	now := time.Now()
	var expired []*models.Play
	for sessionID, play := range app.Plays {
		if now.Sub(play.LastAccessTime) > app.SessionTTL {
			delete(app.Plays, sessionID)
			expired = append(expired, play)
		}
	}
	app.SessionMutex.Unlock()

	for _, play := range expired {
		play.Engine.Close()
	}
	if len(expired) > 0 {
		util.LogInfo("Cleaned up %d expired sessions", len(expired))
	}
	return len(expired)
}

func StartSessionCleanup(ctx context.Context, app *models.App) {
	ticker := time.NewTicker(10 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CleanupExpiredSessions(app)
			}
		}
	}()
	util.LogInfo("Started session cleanup goroutine")
}
