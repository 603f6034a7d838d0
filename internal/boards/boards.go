// Package boards loads the read-only board fixtures served by the game.
package boards

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"

	models "github.com/CodeAndHammer/parludo/internal/models"
	util "github.com/CodeAndHammer/parludo/internal/util"
)

var ErrNoBoards = errors.New("no valid boards")

// Load reads a board file and keeps only the boards that validate.
func Load(path string) ([]models.Board, error) {
	util.LogInfo("Loading boards from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boards: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]models.Board, error) {
	var file models.BoardFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse boards: %w", err)
	}

	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(file.Boards))
	boards := lo.Filter(file.Boards, func(board models.Board, _ int) bool {
		if err := v.Validate(board); err != nil {
			util.LogWarn("Skipping board %q: %v", board.ID, err)
			return false
		}
		if _, dup := seen[board.ID]; dup {
			util.LogWarn("Skipping board %q: duplicate id", board.ID)
			return false
		}
		seen[board.ID] = struct{}{}
		return true
	})
	if len(boards) == 0 {
		return nil, ErrNoBoards
	}

	util.LogInfo("Successfully loaded %d boards", len(boards))
	return boards, nil
}

func Index(boards []models.Board) map[string]models.Board {
	return lo.KeyBy(boards, func(b models.Board) string { return b.ID })
}

func Summaries(boards []models.Board) []models.BoardSummary {
	return lo.Map(boards, func(b models.Board, _ int) models.BoardSummary {
		return models.BoardSummary{ID: b.ID, Title: b.Title, CardCount: b.CardCount, TimeLimitSec: b.TimeLimitSec}
	})
}
