package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reviewpulse/reviewpulse/internal/acquire"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect raw reviews for a product",
}

var scrapeBestBuyCmd = &cobra.Command{
	Use:   "bestbuy <url-or-sku>",
	Short: "Collect Best Buy reviews via the official reviews API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.BestBuy.Acquire(ctx, args[0])
		if err != nil {
			return err
		}
		logScrapeResult(res)
		return nil
	},
}

var scrapeEbayCmd = &cobra.Command{
	Use:   "ebay <url>",
	Short: "Collect eBay feedback via the tiered scraping chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Ebay.Acquire(ctx, args[0])
		if err != nil {
			return err
		}
		logScrapeResult(res)
		return nil
	},
}

func logScrapeResult(res *acquire.Result) {
	zap.L().Info("scrape complete",
		zap.String("product_id", res.ProductID),
		zap.Int("reviews", len(res.Reviews)),
		zap.Int("inserted", res.Inserted),
		zap.Bool("from_cache", res.FromCache),
	)
}

func init() {
	scrapeCmd.AddCommand(scrapeBestBuyCmd)
	scrapeCmd.AddCommand(scrapeEbayCmd)
	rootCmd.AddCommand(scrapeCmd)
}
