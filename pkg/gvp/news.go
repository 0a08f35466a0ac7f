package gvp

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

const report_client_news = "client.news"

// News is a legacy announcement, superseded by articles but still served.
type News struct {
	Id      int64
	Title   string
	Content string
	Date    time.Time
	Author  User
}

type wireNews struct {
	Id      *wireId   `json:"id"`
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Date    *string   `json:"date"`
	Author  *wireUser `json:"author"`
}

func (c *Client) toNews(w wireNews) (News, error) {
	fields := fieldErrors{record: "news"}
	fields.require("id", w.Id != nil)
	fields.require("title", w.Title != nil)
	fields.require("date", w.Date != nil)
	fields.require("author", w.Author != nil)
	if err := fields.err(); err != nil {
		return News{}, err
	}

	date, err := parseTimestamp(*w.Date, c.time.Location())
	if err != nil {
		return News{}, fmt.Errorf("news %d: %w", *w.Id, err)
	}
	author, err := c.toUser(w.Author)
	if err != nil {
		return News{}, fmt.Errorf("news %d: %w", *w.Id, err)
	}

	return News{
		Id:      int64(*w.Id),
		Title:   *w.Title,
		Content: derefOr(w.Content, ""),
		Date:    date,
		Author:  author,
	}, nil
}

// News lists all legacy news.
func (c *Client) News(ctx context.Context) ([]News, error) {
	ctx, span := tracer.Start(ctx, "client:News")
	defer span.End()

	var list []wireNews
	raw, err := fetchList(ctx, c, "news", url.Values{}, &list)
	if err != nil {
		return nil, c.fail(span, report_client_news, err)
	}

	news := make([]News, 0, len(list))
	for i, w := range list {
		item, err := c.toNews(w)
		if err != nil {
			return nil, c.fail(span, report_client_news, newParseError(
				"news", raw, fmt.Errorf("news #%d: %w", i, err),
			))
		}
		news = append(news, item)
	}

	c.tel.ReportCount(report_client_news, int64(len(news)))
	return news, nil
}
