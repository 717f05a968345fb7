package tfe

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// Document is a JSON:API collection response.
type Document[T any] struct {
	Data []T  `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	CurrentPage int  `json:"current-page"`
	PageSize    int  `json:"page-size"`
	PrevPage    *int `json:"prev-page"`
	NextPage    *int `json:"next-page"`
	TotalPages  int  `json:"total-pages"`
	TotalCount  int  `json:"total-count"`
}

// Resource is a single JSON:API resource object.
type Resource[A any] struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes A      `json:"attributes"`
}

// PageOptions controls how many pages FetchAll follows.
type PageOptions struct {
	// StartPage is the first page requested. Must be at least 1.
	StartPage int

	PageSize int

	// MaxDepth caps the number of pages fetched, the first one included. 0 means unbounded.
	MaxDepth int
}

func (o PageOptions) validate() error {
	if o.StartPage < 1 {
		return fmt.Errorf("start page must be at least 1, got %d", o.StartPage)
	}
	if o.PageSize < 1 {
		return fmt.Errorf("page size must be at least 1, got %d", o.PageSize)
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", o.MaxDepth)
	}
	return nil
}

// FetchAll requests a collection starting at opts.StartPage and follows the next-page cursor
// of the first response, one page at a time, until the last page or the depth limit is reached.
// Items are returned in page order and in the order the API returned them within a page.
// The first failing request aborts the fetch.
func FetchAll[T any](ctx context.Context, c *Client, segments []string, params url.Values, opts PageOptions) ([]T, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	first, err := fetchPage[T](ctx, c, segments, params, opts.StartPage, opts.PageSize)
	if err != nil {
		return nil, err
	}

	items := first.Data

	if first.Meta == nil || first.Meta.Pagination == nil {
		return items, nil
	}

	pagination := first.Meta.Pagination
	if pagination.NextPage == nil || pagination.TotalPages <= 1 || opts.MaxDepth == 1 {
		return items, nil
	}

	lastPage := pagination.TotalPages
	if opts.MaxDepth > 0 {
		firstPage := pagination.CurrentPage
		if firstPage < 1 {
			firstPage = opts.StartPage
		}
		lastPage = min(pagination.TotalPages, firstPage+opts.MaxDepth-1)
	}

	c.logger.Debug("following pages",
		zap.Int("next_page", *pagination.NextPage),
		zap.Int("last_page", lastPage),
		zap.Int("total_pages", pagination.TotalPages),
		zap.Int("total_count", pagination.TotalCount),
	)

	for page := *pagination.NextPage; page <= lastPage; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled while fetching page %d: %w", page, err)
		}

		doc, err := fetchPage[T](ctx, c, segments, params, page, opts.PageSize)
		if err != nil {
			return nil, err
		}

		items = append(items, doc.Data...)
	}

	return items, nil
}

func fetchPage[T any](ctx context.Context, c *Client, segments []string, params url.Values, page, size int) (Document[T], error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("page[number]", strconv.Itoa(page))
	query.Set("page[size]", strconv.Itoa(size))

	var doc Document[T]
	if err := c.Get(ctx, segments, query, &doc); err != nil {
		return Document[T]{}, fmt.Errorf("failed to fetch page %d: %w", page, err)
	}

	return doc, nil
}
