package gvp

import "context"

// Resolver is the capability partial records use to fetch their full
// counterpart. *Client implements it, tests may substitute their own.
type Resolver interface {
	Article(ctx context.Context, id int64) (Article, error)
	Articles(ctx context.Context, query ArticlesQuery) ([]Article, error)
	StaticFile(ctx context.Context, id int64) (StaticFile, error)
	Event(ctx context.Context, id int64) (EventDetails, error)
}

var _ Resolver = (*Client)(nil)

// Record is a full record a SearchResult can complete into: Article,
// StaticFile or Comment.
type Record interface {
	isRecord()
}

func (Article) isRecord()    {}
func (StaticFile) isRecord() {}
func (Comment) isRecord()    {}
