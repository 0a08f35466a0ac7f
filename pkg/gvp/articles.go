package gvp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

)

const (
	report_client_articles = "client.articles"
	report_client_article  = "client.article"
)

// ArticleLinkPrefix is where articles are published on the website.
const ArticleLinkPrefix = "https://gvp.cz/new/zivot/clanek/"

// User is a possibly anonymous author of articles, comments and news.
type User struct {
	Username string
	Name     string

	resolver Resolver
}

func (u User) String() string {
	return u.Name
}

func (u User) Anonymous() bool {
	return u.Username == ""
}

// Articles lists the articles written by this user.
func (u User) Articles(ctx context.Context, page int) ([]Article, error) {
	if u.resolver == nil {
		return nil, ErrNoResolver
	}
	if u.Anonymous() {
		return nil, fmt.Errorf("gvp: anonymous user %q has no articles", u.Name)
	}
	return u.resolver.Articles(ctx, ArticlesQuery{Page: page, Author: u.Username})
}

type Comment struct {
	Id        int64
	Text      string
	Date      time.Time
	Edited    bool
	Author    User
	ArticleId int64

	articleLink string
}

// Link is the url of the comment on the article page.
func (c Comment) Link() string {
	return fmt.Sprintf("%s#%d", c.articleLink, c.Id)
}

// Article is a post on the school website.
type Article struct {
	Id      int64
	Title   string
	Preface string
	// Content is nil when the service left the body out.
	Content  *string
	Pinned   bool
	Date     time.Time
	Author   User
	Comments []Comment
	// Slug is the last path segment of the article url.
	Slug string
}

func (a Article) Link() string {
	return ArticleLinkPrefix + a.Slug
}

// Comment finds a comment on the article by id.
func (a Article) Comment(id int64) (Comment, bool) {
	for _, c := range a.Comments {
		if c.Id == id {
			return c, true
		}
	}
	return Comment{}, false
}

type wireUser struct {
	Username *string `json:"username"`
	Name     *string `json:"name"`
}

type wireComment struct {
	Id     *wireId   `json:"id"`
	Text   *string   `json:"text"`
	Date   *string   `json:"date"`
	Edited *bool     `json:"edited"`
	Author *wireUser `json:"author"`
}

type wireArticle struct {
	Id       *wireId        `json:"id"`
	Title    *string        `json:"title"`
	Preface  *string        `json:"preface"`
	Content  *string        `json:"content"`
	Pinned   *bool          `json:"pinned"`
	Date     *string        `json:"date"`
	Author   *wireUser      `json:"author"`
	Comments []*wireComment `json:"comments"`
	Link     *string        `json:"link"`
}

type wireArticleList struct {
	Articles []wireArticle `json:"articles"`
}

func (c *Client) toUser(w *wireUser) (User, error) {
	if w == nil {
		return User{}, fmt.Errorf("author is null")
	}
	fields := fieldErrors{record: "user"}
	fields.require("name", w.Name != nil)
	if err := fields.err(); err != nil {
		return User{}, err
	}
	return User{
		Username: derefOr(w.Username, ""),
		Name:     *w.Name,
		resolver: c,
	}, nil
}

func (c *Client) toComment(w wireComment, article Article) (Comment, error) {
	fields := fieldErrors{record: "comment"}
	fields.require("id", w.Id != nil)
	fields.require("text", w.Text != nil)
	fields.require("date", w.Date != nil)
	fields.require("author", w.Author != nil)
	if err := fields.err(); err != nil {
		return Comment{}, err
	}

	date, err := parseTimestamp(*w.Date, c.time.Location())
	if err != nil {
		return Comment{}, fmt.Errorf("comment %d: %w", *w.Id, err)
	}
	author, err := c.toUser(w.Author)
	if err != nil {
		return Comment{}, fmt.Errorf("comment %d: %w", *w.Id, err)
	}

	return Comment{
		Id:          int64(*w.Id),
		Text:        *w.Text,
		Date:        date,
		Edited:      derefOr(w.Edited, false),
		Author:      author,
		ArticleId:   article.Id,
		articleLink: article.Link(),
	}, nil
}

func (c *Client) toArticle(w wireArticle) (Article, error) {
	fields := fieldErrors{record: "article"}
	fields.require("id", w.Id != nil)
	fields.require("title", w.Title != nil)
	fields.require("date", w.Date != nil)
	fields.require("author", w.Author != nil)
	if err := fields.err(); err != nil {
		return Article{}, err
	}

	date, err := parseTimestamp(*w.Date, c.time.Location())
	if err != nil {
		return Article{}, fmt.Errorf("article %d: %w", *w.Id, err)
	}
	author, err := c.toUser(w.Author)
	if err != nil {
		return Article{}, fmt.Errorf("article %d: %w", *w.Id, err)
	}

	article := Article{
		Id:      int64(*w.Id),
		Title:   *w.Title,
		Preface: derefOr(w.Preface, ""),
		Content: w.Content,
		Pinned:  derefOr(w.Pinned, false),
		Date:    date,
		Author:  author,
		Slug:    derefOr(w.Link, ""),
	}
	for _, wc := range w.Comments {
		// deleted comments show up as nulls
		if wc == nil {
			continue
		}
		comment, err := c.toComment(*wc, article)
		if err != nil {
			return Article{}, fmt.Errorf("article %d: %w", article.Id, err)
		}
		article.Comments = append(article.Comments, comment)
	}
	return article, nil
}

// ArticlesQuery selects a page of articles, optionally only the ones written
// by Author (a username).
type ArticlesQuery struct {
	// Page starts at 1, 0 is treated as 1.
	Page   int
	Author string
}

// Articles lists articles newest first.
func (c *Client) Articles(ctx context.Context, query ArticlesQuery) ([]Article, error) {
	ctx, span := tracer.Start(ctx, "client:Articles")
	defer span.End()

	page := query.Page
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	if query.Author != "" {
		params.Set("author", query.Author)
		params.Set("action", "by_author")
	}
	params.Set("page", strconv.Itoa(page))

	var list wireArticleList
	raw, err := fetchList(ctx, c, "articles", params, &list)
	if err != nil {
		return nil, c.fail(span, report_client_articles, err)
	}
	if list.Articles == nil {
		return nil, c.fail(span, report_client_articles, newParseError(
			"articles", raw, fmt.Errorf(`payload has no "articles" list`),
		))
	}

	articles := make([]Article, 0, len(list.Articles))
	seen := make(map[int64]struct{}, len(list.Articles))
	for _, w := range list.Articles {
		article, err := c.toArticle(w)
		if err != nil {
			return nil, c.fail(span, report_client_articles, newParseError("articles", raw, err))
		}
		if _, dup := seen[article.Id]; dup {
			return nil, c.fail(span, report_client_articles, newParseError(
				"articles", raw, fmt.Errorf("article %d is listed twice", article.Id),
			))
		}
		seen[article.Id] = struct{}{}
		articles = append(articles, article)
	}

	c.tel.ReportCount(report_client_articles, int64(len(articles)))
	return articles, nil
}

// Article fetches a single article including its content and comments.
func (c *Client) Article(ctx context.Context, id int64) (Article, error) {
	ctx, span := tracer.Start(ctx, "client:Article")
	defer span.End()

	idStr := strconv.FormatInt(id, 10)
	params := url.Values{
		"id":     {idStr},
		"action": {"by_id"},
	}

	var w wireArticle
	raw, err := fetchOne(ctx, c, "articles", params, "article", idStr, &w)
	if err != nil {
		return Article{}, c.fail(span, report_client_article, err)
	}
	article, err := c.toArticle(w)
	if err != nil {
		return Article{}, c.fail(span, report_client_article, newParseError("articles", raw, err))
	}
	return article, nil
}
