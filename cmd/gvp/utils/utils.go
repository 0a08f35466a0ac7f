package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sanity-io/litter"
)

type OutputMode int

const (
	OUTPUT_TABLE OutputMode = iota
	OUTPUT_JSON
	OUTPUT_DUMP
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// Output writes value as json or as a go literal, it returns false in table
// mode so that the caller renders the table itself.
func Output(mode OutputMode, value any) (bool, error) {
	switch mode {
	case OUTPUT_JSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(value)
	case OUTPUT_DUMP:
		// records keep a handle to the client, which is not worth printing
		dumper := litter.Options{HidePrivateFields: true}
		fmt.Println(dumper.Sdump(value))
		return true, nil
	}
	return false, nil
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	if t.Hour() == 0 && t.Minute() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04")
}

// Truncate shortens s to at most width runes for table cells.
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return text.Trim(s, width)
}

var converter = md.NewConverter("", true, nil)

// Markdown renders the html bodies of articles and static files for the
// terminal.
func Markdown(html string) string {
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return html
	}
	return markdown
}
