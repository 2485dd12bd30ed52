package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportXLSX string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export reading progress as text or a spreadsheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		goal := svc.DailyGoal()
		if exportXLSX == "" {
			return svc.Progress().Export(cmd.OutOrStdout(), goal)
		}

		f, err := os.Create(exportXLSX)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportXLSX, err)
		}
		if err := svc.Progress().ExportWorkbook(f, goal); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", exportXLSX, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportXLSX)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportXLSX, "xlsx", "", "write an Excel workbook to this file instead of text to stdout")
}
