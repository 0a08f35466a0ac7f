package commands

import (
	"fmt"

	"gvp-client/cmd/gvp/utils"
	"gvp-client/internal/serviceutil"
	"gvp-client/pkg/gvp"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	searchCategory *string
	searchPage     *int
	searchComplete *bool
)

func init() {
	searchCategory = searchCmd.Flags().StringP("category", "c", string(gvp.CATEGORY_ALL), "Only search in one category: all, static, articles or comments.")
	searchPage = searchCmd.Flags().IntP("page", "p", 1, "The page of results to show.")
	searchComplete = searchCmd.Flags().Bool("complete", false, "Fetch and print the full record of every result.")
	rootCmd.AddCommand(searchCmd)
}

func printRecord(record gvp.Record) {
	switch r := record.(type) {
	case gvp.Article:
		printArticle(r)
	case gvp.StaticFile:
		printStaticFile(r)
	case gvp.Comment:
		fmt.Println(r.Link())
		printComment(r)
	}
}

var searchCmd = &cobra.Command{
	Use:   "search [term] [--category <category>] [--page <n>] [--complete]",
	Short: "Searches the website.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		term := ""
		if len(args) == 1 {
			term = args[0]
		}
		results, err := client(cmd).Search(cmd.Context(), gvp.SearchQuery{
			Term:     term,
			Page:     *searchPage,
			Category: gvp.Category(*searchCategory),
		})
		if err != nil {
			serviceutil.Fatal("failed to search", err)
		}

		if *searchComplete {
			var records []gvp.Record
			for _, result := range results {
				record, err := result.Complete(cmd.Context())
				if err != nil {
					serviceutil.Fatal(fmt.Sprintf("failed to complete %q", result.Title), err)
				}
				records = append(records, record)
			}
			done, err := utils.Output(outputMode(), records)
			if err != nil {
				serviceutil.Fatal("failed to write output", err)
			}
			if done {
				return
			}
			for i, record := range records {
				if i > 0 {
					fmt.Println()
				}
				printRecord(record)
			}
			return
		}

		done, err := utils.Output(outputMode(), results)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		if done {
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Category", "Title", "Reference", "Content"})
		for _, result := range results {
			t.AppendRow(table.Row{
				result.Category,
				utils.Truncate(result.Title, 50),
				result.Reference,
				utils.Truncate(result.Content, 50),
			})
		}
		t.Render()
	},
}
