package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/aggregate"
)

var processForce bool

var processCmd = &cobra.Command{
	Use:   "process <product-id>",
	Short: "Run sentiment and aspect analysis over a product's raw reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		reviews, err := env.Engine.Process(ctx, args[0], processForce)
		if err != nil {
			return err
		}

		stats := aggregate.Summarize(reviews)
		zap.L().Info("processing complete",
			zap.String("product_id", args[0]),
			zap.Int("total_reviews", stats.TotalReviews),
			zap.Float64("positive_pct", stats.PositivePct),
			zap.Float64("negative_pct", stats.NegativePct),
			zap.Float64("neutral_pct", stats.NeutralPct),
			zap.Float64("overall_score", stats.OverallScore),
		)
		return nil
	},
}

func init() {
	processCmd.Flags().BoolVar(&processForce, "force", false, "re-run analysis even when processed reviews exist")
	rootCmd.AddCommand(processCmd)
}
