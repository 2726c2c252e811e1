// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoResults matches every NoResultsError via errors.Is.
var ErrNoResults = errors.New("no results")

// NoResultsError reports a search whose pagination finished with no ids.
type NoResultsError struct {
	Term string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("search returned no article ids for term %q", e.Term)
}

func (e *NoResultsError) Is(target error) bool { return target == ErrNoResults }

// Search pages through esearch results for filter and returns every id in
// the order received. Ids repeated across pages are kept.
//
// A page is requested while its offset is below MaxResults. Pagination
// stops early when a response carries no IdList or when a page holds
// fewer than RetMax ids. Consecutive page requests are separated by Delay.
// A request that exhausts its retries aborts the search; the failing page
// contributes nothing.
func (c *Client) Search(ctx context.Context, filter SearchFilter) ([]string, error) {
	retMax := c.Config.RetMax
	if retMax <= 0 {
		return nil, fmt.Errorf("retmax must be positive, got %d", retMax)
	}

	var ids []string
	total := ""
	for offset := 0; offset < c.Config.MaxResults; {
		body, err := c.HTTP.Get(ctx, c.searchURL(filter, offset))
		if err != nil {
			return nil, fmt.Errorf("esearch at offset %d: %w", offset, err)
		}
		page, err := decodeSearch(body)
		if err != nil {
			return nil, err
		}
		if total == "" {
			total = page.Count
		}

		if page.IDList == nil {
			if page.Error != "" {
				c.Logger.Warn("esearch reported an error", "offset", offset, "error", page.Error)
			}
			c.Logger.Info("no id list in response, stopping pagination", "offset", offset)
			break
		}

		ids = append(ids, page.IDList.IDs...)
		c.Logger.Info("search page fetched",
			"offset", offset, "page_ids", len(page.IDList.IDs), "collected", len(ids), "count", total)

		if len(page.IDList.IDs) < retMax {
			break
		}

		offset += retMax
		if offset < c.Config.MaxResults {
			if err := c.Waiter.Wait(ctx, c.Config.Delay); err != nil {
				return nil, err
			}
		}
	}

	if len(ids) == 0 {
		return nil, &NoResultsError{Term: filter.String()}
	}
	c.Logger.Info("search complete", "ids", len(ids), "count", total)
	return ids, nil
}
