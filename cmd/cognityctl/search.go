package main

import (
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search titles, bodies and tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		printArticles(cmd.OutOrStdout(), svc.Articles("", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
