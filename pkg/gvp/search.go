package gvp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

)

const report_client_search = "client.search"

// Category is the source a search result comes from. The set is defined by
// the service, the constants below are the ones known to be served.
type Category string

const (
	CATEGORY_ALL      Category = "all"
	CATEGORY_STATIC   Category = "static"
	CATEGORY_ARTICLES Category = "articles"
	CATEGORY_COMMENTS Category = "comments"
)

// SearchResult is a partial record, Complete fetches what it refers to.
type SearchResult struct {
	Category Category
	Title    string
	Content  string
	// Reference is the key of the result within its category, a static file
	// id, an article slug or an article slug with a "#<comment id>" suffix.
	Reference string

	resolver Resolver
}

type searchReference struct {
	id        int64
	commentId int64
}

// lastDashToken returns what follows the last "-" of s, or s itself.
func lastDashToken(s string) string {
	idx := strings.LastIndex(s, "-")
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

func parseSearchReference(category Category, reference string) (searchReference, error) {
	switch category {
	case CATEGORY_STATIC:
		id, err := strconv.ParseInt(strings.TrimSpace(reference), 10, 64)
		if err != nil {
			return searchReference{}, fmt.Errorf("static reference %q is not an id", reference)
		}
		return searchReference{id: id}, nil
	case CATEGORY_ARTICLES:
		id, err := strconv.ParseInt(lastDashToken(reference), 10, 64)
		if err != nil {
			return searchReference{}, fmt.Errorf("article reference %q does not end with an id", reference)
		}
		return searchReference{id: id}, nil
	case CATEGORY_COMMENTS:
		articlePart, commentPart, ok := strings.Cut(lastDashToken(reference), "#")
		if !ok {
			return searchReference{}, fmt.Errorf("comment reference %q has no comment id", reference)
		}
		articleId, err := strconv.ParseInt(articlePart, 10, 64)
		if err != nil {
			return searchReference{}, fmt.Errorf("comment reference %q has no article id", reference)
		}
		commentId, err := strconv.ParseInt(commentPart, 10, 64)
		if err != nil {
			return searchReference{}, fmt.Errorf("comment reference %q has no comment id", reference)
		}
		return searchReference{id: articleId, commentId: commentId}, nil
	}
	return searchReference{}, fmt.Errorf("%w: %q", ErrUnsupportedCategory, category)
}

// Complete fetches the full record the result refers to: a StaticFile, an
// Article or a Comment depending on Category.
func (r SearchResult) Complete(ctx context.Context) (Record, error) {
	if r.resolver == nil {
		return nil, ErrNoResolver
	}

	ref, err := parseSearchReference(r.Category, r.Reference)
	if err != nil {
		return nil, err
	}

	switch r.Category {
	case CATEGORY_STATIC:
		file, err := r.resolver.StaticFile(ctx, ref.id)
		if err != nil {
			return nil, err
		}
		return file, nil
	case CATEGORY_ARTICLES:
		article, err := r.resolver.Article(ctx, ref.id)
		if err != nil {
			return nil, err
		}
		return article, nil
	case CATEGORY_COMMENTS:
		article, err := r.resolver.Article(ctx, ref.id)
		if err != nil {
			return nil, err
		}
		comment, ok := article.Comment(ref.commentId)
		if !ok {
			return nil, &NotFoundError{
				Endpoint: "articles",
				Kind:     "comment",
				Id:       strconv.FormatInt(ref.commentId, 10),
				Message:  fmt.Sprintf("not among the comments of article %d", article.Id),
			}
		}
		return comment, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCategory, r.Category)
}

type SearchQuery struct {
	// Term is sent as is, an empty term is left to the service to interpret.
	Term string
	// Page starts at 1, 0 is treated as 1.
	Page int
	// Category restricts results to one source, empty means CATEGORY_ALL.
	Category Category
}

type wireSearchResult struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Link     *string `json:"link"`
	Category *string `json:"category"`
}

type wireSearchResults struct {
	Results []json.RawMessage `json:"results"`
}

func (c *Client) toSearchResult(w wireSearchResult, requested Category) (SearchResult, error) {
	fields := fieldErrors{record: "search result"}
	fields.require("link", w.Link != nil)
	if err := fields.err(); err != nil {
		return SearchResult{}, err
	}

	category := requested
	if w.Category != nil && *w.Category != "" {
		category = Category(*w.Category)
	}
	if category == CATEGORY_ALL {
		return SearchResult{}, fmt.Errorf("search result %q has no category", *w.Title)
	}
	if requested != CATEGORY_ALL && category != requested {
		return SearchResult{}, fmt.Errorf(
			"search result %q is in category %q, requested %q",
			*w.Title, category, requested,
		)
	}

	// references of categories this package does not know about are kept
	// opaque, they just cannot be completed
	_, err := parseSearchReference(category, *w.Link)
	if err != nil && !errors.Is(err, ErrUnsupportedCategory) {
		return SearchResult{}, err
	}

	return SearchResult{
		Category:  category,
		Title:     *w.Title,
		Content:   derefOr(w.Content, ""),
		Reference: *w.Link,
		resolver:  c,
	}, nil
}

// Search looks for a term across the website. Contacts are not searchable.
func (c *Client) Search(ctx context.Context, query SearchQuery) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "client:Search")
	defer span.End()

	page := query.Page
	if page < 1 {
		page = 1
	}
	category := query.Category
	if category == "" {
		category = CATEGORY_ALL
	}
	params := url.Values{
		"term":     {query.Term},
		"page":     {strconv.Itoa(page)},
		"category": {string(category)},
	}

	var list wireSearchResults
	raw, err := fetchList(ctx, c, "search", params, &list)
	if err != nil {
		return nil, c.fail(span, report_client_search, err)
	}
	if list.Results == nil {
		return nil, c.fail(span, report_client_search, newParseError(
			"search", raw, fmt.Errorf(`payload has no "results" list`),
		))
	}

	results := make([]SearchResult, 0, len(list.Results))
	for i, item := range list.Results {
		var w wireSearchResult
		err := json.Unmarshal(item, &w)
		if err != nil {
			return nil, c.fail(span, report_client_search, newParseError(
				"search", raw, fmt.Errorf("search result #%d: %w", i, err),
			))
		}
		// the service pads results with untitled entries, they do not refer
		// to anything
		if w.Title == nil {
			continue
		}
		result, err := c.toSearchResult(w, category)
		if err != nil {
			return nil, c.fail(span, report_client_search, newParseError(
				"search", raw, fmt.Errorf("search result #%d: %w", i, err),
			))
		}
		results = append(results, result)
	}

	c.tel.ReportCount(report_client_search, int64(len(results)))
	return results, nil
}
