package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cognitypin/cognitypin/internal/content"
)

var listCategory string

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "List catalog articles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var category content.Category
		if listCategory != "" {
			c, ok := content.ParseCategory(listCategory)
			if !ok {
				return fmt.Errorf("unknown category %q", listCategory)
			}
			category = c
		}
		printArticles(cmd.OutOrStdout(), svc.Articles(category, ""))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(articlesCmd)
	articlesCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only list articles in this category")
}

func printArticles(out io.Writer, articles []content.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(out, "No articles found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTitle\tCategory\tTime\tRead\tSaved")
	for _, a := range articles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Title, a.Category.Title(), a.ReadingLabel(),
			mark(svc.Progress().IsRead(a.ID)), mark(svc.Repository().IsBookmarked(a.ID)))
	}
	w.Flush()
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
