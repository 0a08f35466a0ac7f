package gvp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const (
	report_client_static_files = "client.static-files"
	report_client_static_file  = "client.static-file"
)

// StaticFile is a static page of the website.
type StaticFile struct {
	Id    int64
	Title string
	// Content is nil when the service left the body out.
	Content *string
}

type wireStaticFile struct {
	Id      *wireId `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func toStaticFile(w wireStaticFile) (StaticFile, error) {
	fields := fieldErrors{record: "static file"}
	fields.require("id", w.Id != nil)
	fields.require("title", w.Title != nil)
	if err := fields.err(); err != nil {
		return StaticFile{}, err
	}
	return StaticFile{
		Id:      int64(*w.Id),
		Title:   *w.Title,
		Content: w.Content,
	}, nil
}

// StaticFiles lists every static page.
func (c *Client) StaticFiles(ctx context.Context) ([]StaticFile, error) {
	ctx, span := tracer.Start(ctx, "client:StaticFiles")
	defer span.End()

	var list []wireStaticFile
	raw, err := fetchList(ctx, c, "static", url.Values{}, &list)
	if err != nil {
		return nil, c.fail(span, report_client_static_files, err)
	}

	files := make([]StaticFile, 0, len(list))
	for i, w := range list {
		file, err := toStaticFile(w)
		if err != nil {
			return nil, c.fail(span, report_client_static_files, newParseError(
				"static", raw, fmt.Errorf("static file #%d: %w", i, err),
			))
		}
		files = append(files, file)
	}

	c.tel.ReportCount(report_client_static_files, int64(len(files)))
	return files, nil
}

// StaticFile fetches a single static page with its content.
func (c *Client) StaticFile(ctx context.Context, id int64) (StaticFile, error) {
	ctx, span := tracer.Start(ctx, "client:StaticFile")
	defer span.End()

	idStr := strconv.FormatInt(id, 10)
	params := url.Values{
		"id":     {idStr},
		"action": {"by_id"},
	}

	var w wireStaticFile
	raw, err := fetchOne(ctx, c, "static", params, "static file", idStr, &w)
	if err != nil {
		return StaticFile{}, c.fail(span, report_client_static_file, err)
	}
	file, err := toStaticFile(w)
	if err != nil {
		return StaticFile{}, c.fail(span, report_client_static_file, newParseError("static", raw, err))
	}
	return file, nil
}
