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

var (
	articlesPage   *int
	articlesAuthor *string
	articleRaw     *bool
)

func init() {
	articlesPage = articlesCmd.Flags().IntP("page", "p", 1, "The page of articles to list.")
	articlesAuthor = articlesCmd.Flags().StringP("author", "a", "", "Only list articles written by this username.")
	rootCmd.AddCommand(articlesCmd)

	articleRaw = articleCmd.Flags().Bool("raw", false, "Print the content as html instead of markdown.")
	rootCmd.AddCommand(articleCmd)
}

var articlesCmd = &cobra.Command{
	Use:   "articles [--page <n>] [--author <username>]",
	Short: "Lists articles, newest first.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		articles, err := client(cmd).Articles(cmd.Context(), gvp.ArticlesQuery{
			Page:   *articlesPage,
			Author: *articlesAuthor,
		})
		if err != nil {
			serviceutil.Fatal("failed to list articles", err)
		}
		done, err := utils.Output(outputMode(), articles)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		if done {
			return
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Id", "Date", "Title", "Author", "Comments"})
		for _, article := range articles {
			title := article.Title
			if article.Pinned {
				title = "* " + title
			}
			t.AppendRow(table.Row{
				article.Id,
				utils.FormatTime(article.Date),
				utils.Truncate(title, 60),
				article.Author.Name,
				len(article.Comments),
			})
		}
		t.Render()
	},
}

func printArticle(article gvp.Article) {
	fmt.Printf("# %s\n\n", article.Title)
	fmt.Printf("%s, %s\n%s\n\n", article.Author.Name, utils.FormatTime(article.Date), article.Link())
	if article.Preface != "" {
		fmt.Printf("%s\n\n", utils.Markdown(article.Preface))
	}
	if article.Content != nil {
		if *articleRaw {
			fmt.Println(*article.Content)
		} else {
			fmt.Println(utils.Markdown(*article.Content))
		}
	}
	if len(article.Comments) == 0 {
		return
	}

	fmt.Printf("\n## Comments (%d)\n\n", len(article.Comments))
	for _, comment := range article.Comments {
		printComment(comment)
	}
}

func printComment(comment gvp.Comment) {
	edited := ""
	if comment.Edited {
		edited = " (edited)"
	}
	fmt.Printf("- %s, %s%s: %s\n", comment.Author.Name, utils.FormatTime(comment.Date), edited, comment.Text)
}

var articleCmd = &cobra.Command{
	Use:   "article <id> [--raw]",
	Short: "Shows a single article with its comments.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid article id", err)
		}
		article, err := client(cmd).Article(cmd.Context(), id)
		if err != nil {
			serviceutil.Fatal("failed to get article", err)
		}
		done, err := utils.Output(outputMode(), article)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}
		if done {
			return
		}
		printArticle(article)
	},
}
