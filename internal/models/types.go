package models

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	engine "github.com/CodeAndHammer/parludo/internal/engine"
	scores "github.com/CodeAndHammer/parludo/internal/scores"
)

type Pair struct {
	ID         string `json:"id" validate:"required"`
	Term       string `json:"term" validate:"required"`
	Definition string `json:"definition"`
}

type Board struct {
	ID           string `json:"id" validate:"required"`
	Title        string `json:"title" validate:"required"`
	CardCount    int    `json:"cardCount" validate:"oneof=16 24"`
	TimeLimitSec int    `json:"timeLimitSec" validate:"gte=0"`
	Pairs        []Pair `json:"pairs" validate:"required,dive"`
}

type BoardFile struct {
	Boards []Board `json:"boards"`
}

type BoardSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CardCount    int    `json:"cardCount"`
	TimeLimitSec int    `json:"timeLimitSec"`
}

// Play is one engine instance hosted for a browser session.
type Play struct {
	ID             string
	SessionID      string
	Board          Board
	Engine         *engine.Engine
	Effects        *EffectLog
	Definitions    map[string]string
	mu             sync.Mutex
	notice         string
	LastAccessTime time.Time
}

func (p *Play) Notice() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notice
}

func (p *Play) SetNotice(notice string) {
	p.mu.Lock()
	p.notice = notice
	p.mu.Unlock()
}

type RateLimiterEntry struct {
	Limiter    *rate.Limiter
	LastAccess time.Time
}

type App struct {
	Boards         []Board
	BoardIndex     map[string]Board
	Plays          map[string]*Play
	SessionMutex   sync.RWMutex
	LimiterMap     map[string]*RateLimiterEntry
	LimiterMutex   sync.RWMutex
	Scores         scores.Store
	IsProduction   bool
	StartTime      time.Time
	CookieMaxAge   time.Duration
	StaticCacheAge time.Duration
	RateLimitRPS   int
	RateLimitBurst int
	RateLimiterTTL time.Duration
	SessionTTL     time.Duration
	RevealDelay    time.Duration
	DefaultLimit   time.Duration
}
