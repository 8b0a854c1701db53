package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/aggregate"
	"github.com/reviewpulse/reviewpulse/internal/apperr"
)

var (
	compareTitle1 string
	compareTitle2 string
)

var compareCmd = &cobra.Command{
	Use:   "compare <product-id-1> <product-id-2>",
	Short: "Compare two products by sentiment, aspects, and narrative summary",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		pids := []string{args[0], args[1]}
		cmpResult, err := env.Comparer.Compare(ctx, pids)
		if err != nil {
			return err
		}

		narrative := ""
		cs, err := env.Summary.CompetitorSummary(ctx, args[0], args[1], compareTitle1, compareTitle2)
		switch {
		case err == nil:
			narrative = cs.Summary
		case errors.Is(err, apperr.ErrInsufficientData) || errors.Is(err, apperr.ErrNoRawData):
			zap.L().Warn("competitor summary skipped", zap.Error(err))
		default:
			return err
		}

		winner, scores := aggregate.OverallWinner(cmpResult.Summary)
		out := map[string]any{
			"comparison":     narrative,
			"aspect_winners": aggregate.AspectWinners(cmpResult),
			"overall_scores": scores,
			"overall_winner": winner,
			"product_ids":    pids,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareTitle1, "title1", "", "display title for the first product")
	compareCmd.Flags().StringVar(&compareTitle2, "title2", "", "display title for the second product")
	rootCmd.AddCommand(compareCmd)
}
