package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	constants "github.com/CodeAndHammer/parludo/internal/constants"
	models "github.com/CodeAndHammer/parludo/internal/models"
	util "github.com/CodeAndHammer/parludo/internal/util"
)

var cspTemplate = "default-src 'self'; script-src 'self' https://cdn.jsdelivr.net https://cdn.jsdelivr.net/npm 'unsafe-inline'; style-src 'self' https://cdn.jsdelivr.net https://fonts.bunny.net 'unsafe-inline'; font-src 'self' https://cdn.jsdelivr.net https://fonts.bunny.net; img-src 'self' data:; media-src 'none'; connect-src 'self'; object-src 'none'; base-uri 'self'; form-action 'self'; frame-ancestors 'none';"

func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		origin := scheme + "://" + c.Request.Host
		csp := strings.ReplaceAll(cspTemplate, "'self'", "'"+origin+"'")
		c.Header("Content-Security-Policy", csp)
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		}
		c.Next()
	}
}

func getLimiter(app *models.App, key string) *rate.Limiter {
	app.LimiterMutex.RLock()
	entry, ok := app.LimiterMap[key]
	app.LimiterMutex.RUnlock()
	if ok {
		app.LimiterMutex.Lock()
		if entry, ok = app.LimiterMap[key]; ok {
			entry.LastAccess = time.Now()
		}
		app.LimiterMutex.Unlock()
		if ok {
			return entry.Limiter
		}
	}

	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()
	if entry, ok = app.LimiterMap[key]; ok {
		entry.LastAccess = time.Now()
		return entry.Limiter
	}

	if key == "" || key == "::1" {
		util.LogWarn("Rate limiter key is empty or loopback: %q", key)
	}
	rps := app.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	lim := rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), app.RateLimitBurst)
	app.LimiterMap[key] = &models.RateLimiterEntry{
		Limiter:    lim,
		LastAccess: time.Now(),
	}
	return lim
}

func rateLimitMiddleware(app *models.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !getLimiter(app, key).Allow() {
			if c.GetHeader("HX-Request") == "true" {
				c.Header("HX-Trigger", "rate-limit-exceeded")
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			return
		}
		c.Next()
	}
}

func cleanupStaleRateLimiters(app *models.App) int {
	app.LimiterMutex.Lock()
	defer app.LimiterMutex.Unlock()

	cutoffTime := time.Now().Add(-app.RateLimiterTTL)
	removedCount := 0

	for key, entry := range app.LimiterMap {
		if entry.LastAccess.Before(cutoffTime) {
			delete(app.LimiterMap, key)
			removedCount++
		}
	}

	if len(app.LimiterMap) > 50000 {
		type limiterInfo struct {
			key        string
			lastAccess time.Time
		}

		limiters := make([]limiterInfo, 0, len(app.LimiterMap))
		for key, entry := range app.LimiterMap {
			limiters = append(limiters, limiterInfo{key: key, lastAccess: entry.LastAccess})
		}

		sort.Slice(limiters, func(i, j int) bool {
			return limiters[i].lastAccess.Before(limiters[j].lastAccess)
		})

		entriesToRemove := len(limiters) / 2
		for i := 0; i < entriesToRemove; i++ {
			delete(app.LimiterMap, limiters[i].key)
			removedCount++
		}

		util.LogInfo("Removed %d oldest rate limiters", entriesToRemove)
	}

	if removedCount > 0 {
		util.LogInfo("Cleaned up %d stale rate limiters", removedCount)
	}
	return removedCount
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.Request.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), constants.RequestIDKey, reqID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

func validateCSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method == http.MethodPost || method == http.MethodPut || method == http.MethodDelete || method == http.MethodPatch {
			cookie, _ := c.Cookie(constants.CSRFCookieName)
			token := c.GetHeader("X-CSRF-Token")
			if token == "" {
				token = c.PostForm(constants.CSRFCookieName)
			}
			if token == "" || cookie == "" || token != cookie {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid csrf token"})
				return
			}
		}
		c.Next()
	}
}

func csrfMiddleware(app *models.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(constants.CSRFCookieName)
		if err != nil || len(token) < 8 {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err == nil {
				token = fmt.Sprintf("%x", b)
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(constants.CSRFCookieName, token, int(app.CookieMaxAge.Seconds()), "/", "", app.IsProduction, false)
			}
		}
		c.Set(constants.CSRFCookieName, token)
		c.Next()
	}
}
