package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show reading statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sum := svc.Summary()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Articles read\t%d of %d\n", sum.ArticlesRead, svc.Repository().Len())
		fmt.Fprintf(w, "Reading time\t%s\n", sum.ReadingTimeLabel)
		fmt.Fprintf(w, "Streak\t%s\n", sum.StreakLabel)
		fmt.Fprintf(w, "Today\t%d of %d\n", sum.ReadsToday, sum.DailyGoal)
		fmt.Fprintf(w, "Bookmarked\t%d\n", sum.Bookmarked)
		if sum.QuizzesTaken > 0 {
			fmt.Fprintf(w, "Average quiz score\t%d%% over %d quizzes\n", sum.AverageQuizScore, sum.QuizzesTaken)
		} else {
			fmt.Fprintln(w, "Average quiz score\t-")
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
