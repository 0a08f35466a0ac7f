package commands

import (
	"gvp-client/cmd/gvp/utils"
	"gvp-client/internal/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newsCmd)
}

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Lists the news of the old website.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		news, err := client(cmd).News(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list news", err)
		}
		done, err := utils.Output(outputMode(), news)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		if done {
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Id", "Date", "Title", "Author"})
		for _, item := range news {
			t.AppendRow(table.Row{
				item.Id,
				utils.FormatTime(item.Date),
				utils.Truncate(item.Title, 60),
				item.Author.Name,
			})
		}
		t.Render()
	},
}
