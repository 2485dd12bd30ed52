package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var forceReset bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all reading progress and bookmarks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !forceReset {
			fmt.Fprint(out, "Delete all progress and bookmarks? (y/N): ")
			input, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			input = strings.TrimSpace(strings.ToLower(input))
			if input != "y" && input != "yes" {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		if err := svc.DeleteAccount(); err != nil {
			return err
		}
		fmt.Fprintln(out, "All progress deleted.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVarP(&forceReset, "force", "f", false, "skip confirmation")
}
