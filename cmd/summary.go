package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summaryCached bool

var summaryCmd = &cobra.Command{
	Use:   "summary <product-id>",
	Short: "Summarize a product's processed reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if summaryCached {
			doc, err := env.Summary.CachedSummary(ctx, args[0])
			if err != nil {
				return err
			}
			if doc == nil {
				fmt.Println("no cached summary")
				return nil
			}
			fmt.Println(doc.Summary)
			return nil
		}

		summary, err := env.Summary.ProductSummary(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryCached, "cached", false, "print the stored summary without regenerating")
	rootCmd.AddCommand(summaryCmd)
}
