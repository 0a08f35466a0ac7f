package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText drops non-printable runes, trims the ends and collapses runs of
// whitespace into a single space.
func CleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
	s = strings.Trim(s, " ")
	return innerWhitespace.ReplaceAllString(s, " ")
}

// SelectionText is CleanText over the text of every node in sel.
func SelectionText(sel *goquery.Selection) string {
	var text strings.Builder
	for _, n := range sel.Nodes {
		text.WriteString(GetText(n))
	}
	return CleanText(text.String())
}

// SelectedOption returns the first option of a <select> carrying the
// `selected` attribute.
func SelectedOption(sel *goquery.Selection) (*goquery.Selection, bool) {
	option := sel.Find("option[selected]").First()
	return option, option.Length() > 0
}
