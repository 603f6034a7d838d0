package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	boards "github.com/CodeAndHammer/parludo/internal/boards"
	config "github.com/CodeAndHammer/parludo/internal/config"
	scores "github.com/CodeAndHammer/parludo/internal/scores"
	util "github.com/CodeAndHammer/parludo/internal/util"
)

func newBoardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "Inspect board files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a board file and list the playable boards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			util.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)
			path := cfg.BoardsPath
			if len(args) == 1 {
				path = args[0]
			}
			list, err := boards.Load(path)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCARDS\tPAIRS\tLIMIT")
			for _, b := range list {
				limit := "none"
				if b.TimeLimitSec > 0 {
					limit = util.FormatClock(b.TimeLimitSec)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", b.ID, b.Title, b.CardCount, len(b.Pairs), limit)
			}
			return w.Flush()
		},
	})
	return cmd
}

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Query the leaderboard store",
	}
	var limit int
	top := &cobra.Command{
		Use:   "top <boardID>",
		Short: "Print the fastest finishes for a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			util.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)
			store, err := scores.Open(cfg.ScoresDriver, cfg.ScoresDSN)
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.Top(context.Background(), args[0], limit)
			if err != nil {
				return fmt.Errorf("load scores: %w", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tTIME\tCARDS\tWHEN")
			for i, s := range rows {
				fmt.Fprintf(w, "%d\t%.1fs\t%d\t%s\n", i+1, float64(s.ElapsedMs)/1000, s.CardCount, s.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	top.Flags().IntVarP(&limit, "limit", "n", 10, "number of rows to print")
	cmd.AddCommand(top)
	return cmd
}
