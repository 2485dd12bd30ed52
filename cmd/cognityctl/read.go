package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <article-id>",
	Short: "Mark an article as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := svc.StartReading(args[0])
		if err != nil {
			return err
		}
		if _, err := svc.CompleteReading(view.ID); err != nil {
			return err
		}
		if _, err := svc.CloseReading(view.ID); err != nil {
			return err
		}
		sum := svc.Summary()
		fmt.Fprintf(cmd.OutOrStdout(), "Marked %s as read. Streak: %s\n", args[0], sum.StreakLabel)
		return nil
	},
}

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <article-id>",
	Short: "Toggle the bookmark on an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := svc.ToggleBookmark(args[0])
		if err != nil {
			return err
		}
		if on {
			fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked %s.\n", args[0])
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark from %s.\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(bookmarkCmd)
}
