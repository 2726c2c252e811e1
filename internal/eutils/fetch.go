// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"fmt"
	"slices"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// FetchDetails retrieves full records for ids with one efetch request per
// batch of BatchSize ids (the last batch may be smaller). Batches run in
// order with Delay between them and none after the last. A batch that
// yields no records adds nothing.
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]types.Article, error) {
	size := c.Config.BatchSize
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	batches := (len(ids) + size - 1) / size
	var articles []types.Article
	n := 0
	for batch := range slices.Chunk(ids, size) {
		n++
		body, err := c.HTTP.Get(ctx, c.fetchURL(batch))
		if err != nil {
			return nil, fmt.Errorf("efetch batch %d/%d: %w", n, batches, err)
		}
		records, err := decodeArticles(body)
		if err != nil {
			return nil, fmt.Errorf("efetch batch %d/%d: %w", n, batches, err)
		}
		articles = append(articles, records...)
		c.Logger.Info("fetch batch complete",
			"batch", n, "batches", batches, "ids", len(batch), "records", len(records), "total", len(articles))

		if n < batches {
			if err := c.Waiter.Wait(ctx, c.Config.Delay); err != nil {
				return nil, err
			}
		}
	}
	return articles, nil
}
