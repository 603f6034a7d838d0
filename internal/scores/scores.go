// Package scores records finished plays and serves per-board leaderboards.
package scores

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrInvalidScore = errors.New("invalid score")

// Score is one completed play.
type Score struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	BoardID   string    `gorm:"index;not null" json:"boardId"`
	SessionID string    `gorm:"index" json:"-"`
	PlayID    string    `json:"playId"`
	ElapsedMs int64     `gorm:"index" json:"elapsedMs"`
	CardCount int       `json:"cardCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	Submit(ctx context.Context, score *Score) error
	Top(ctx context.Context, boardID string, limit int) ([]Score, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

func validate(score *Score) error {
	if score == nil || score.BoardID == "" || score.ElapsedMs < 0 {
		return ErrInvalidScore
	}
	return nil
}

// Open returns the store for driver: "memory" (or empty), "sqlite" or
// "postgres".
func Open(driver, dsn string) (Store, error) {
	switch strings.ToLower(driver) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return openGormStore(sqlite.Open(dsn))
	case "postgres":
		return openGormStore(postgres.Open(dsn))
	default:
		return nil, fmt.Errorf("unknown scores driver %q", driver)
	}
}

func openGormStore(dialector gorm.Dialector) (Store, error) {
	store, err := OpenGorm(dialector)
	if err != nil {
		return nil, err
	}
	return store, nil
}

type MemoryStore struct {
	mu     sync.RWMutex
	scores []Score
	nextID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Submit(_ context.Context, score *Score) error {
	if err := validate(score); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	score.ID = m.nextID
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now()
	}
	m.scores = append(m.scores, *score)
	return nil
}

func (m *MemoryStore) Top(_ context.Context, boardID string, limit int) ([]Score, error) {
	m.mu.RLock()
	board := lo.Filter(m.scores, func(s Score, _ int) bool { return s.BoardID == boardID })
	m.mu.RUnlock()

	sort.SliceStable(board, func(i, j int) bool {
		if board[i].ElapsedMs != board[j].ElapsedMs {
			return board[i].ElapsedMs < board[j].ElapsedMs
		}
		return board[i].ID < board[j].ID
	})
	if limit > 0 && len(board) > limit {
		board = board[:limit]
	}
	return board, nil
}

func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.scores)), nil
}

func (m *MemoryStore) Close() error { return nil }

type GormStore struct {
	db *gorm.DB
}

func OpenGorm(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect scores database: %w", err)
	}
	if err := db.AutoMigrate(&Score{}); err != nil {
		return nil, fmt.Errorf("failed to migrate scores: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Submit(ctx context.Context, score *Score) error {
	if err := validate(score); err != nil {
		return err
	}
	return g.db.WithContext(ctx).Create(score).Error
}

func (g *GormStore) Top(ctx context.Context, boardID string, limit int) ([]Score, error) {
	var out []Score
	q := g.db.WithContext(ctx).Where("board_id = ?", boardID).Order("elapsed_ms ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (g *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&Score{}).Count(&n).Error
	return n, err
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
