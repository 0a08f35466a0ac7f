package commands

import (
	"fmt"
	"strconv"

	"gvp-client/cmd/gvp/utils"
	"gvp-client/internal/serviceutil"
	"gvp-client/pkg/gvp"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(staticCmd)
}

func printStaticFile(file gvp.StaticFile) {
	fmt.Printf("# %s\n\n", file.Title)
	if file.Content != nil {
		fmt.Println(utils.Markdown(*file.Content))
	}
}

var staticCmd = &cobra.Command{
	Use:   "static [id]",
	Short: "Lists static pages, or shows one of them.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				serviceutil.Fatal("invalid static file id", err)
			}
			file, err := client(cmd).StaticFile(cmd.Context(), id)
			if err != nil {
				serviceutil.Fatal("failed to get static file", err)
			}
			done, err := utils.Output(outputMode(), file)
			if err != nil {
				serviceutil.Fatal("failed to write output", err)
			}
			if !done {
				printStaticFile(file)
			}
			return
		}

		files, err := client(cmd).StaticFiles(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list static files", err)
		}
		done, err := utils.Output(outputMode(), files)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		if done {
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Id", "Title"})
		for _, file := range files {
			t.AppendRow(table.Row{file.Id, file.Title})
		}
		t.Render()
	},
}
