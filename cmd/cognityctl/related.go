package main

import (
	"github.com/spf13/cobra"

	"github.com/cognitypin/cognitypin/internal/scoring"
)

var relatedLimit int

var relatedCmd = &cobra.Command{
	Use:   "related <article-id>",
	Short: "Show the articles most related to one article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		related, err := svc.Related(args[0], relatedLimit)
		if err != nil {
			return err
		}
		printArticles(cmd.OutOrStdout(), related)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(relatedCmd)
	relatedCmd.Flags().IntVarP(&relatedLimit, "limit", "n", scoring.DefaultRelatedLimit, "maximum number of articles")
}
