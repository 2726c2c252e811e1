// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// --- shared test helpers ---

type fakeWaiter struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *fakeWaiter) Wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waits = append(w.waits, d)
	return ctx.Err()
}

func (w *fakeWaiter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waits)
}

func testConfig(baseURL string) types.HarvestConfig {
	cfg := types.DefaultHarvestConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.Delay = 340 * time.Millisecond
	cfg.Retry.Delay = time.Second
	return cfg
}

// newTestClient returns a Client pointed at ts with fake waiters for both
// the retry loop and inter-request pacing.
func newTestClient(ts *httptest.Server, cfg types.HarvestConfig) (*Client, *fakeWaiter, *fakeWaiter) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewClient(cfg, ts.Client(), logger)
	pace := &fakeWaiter{}
	retry := &fakeWaiter{}
	c.Waiter = pace
	c.HTTP.Waiter = retry
	return c, pace, retry
}

// searchPageXML renders an esearch response holding n ids starting at first.
func searchPageXML(first, n, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE eSearchResult PUBLIC "-//NLM//DTD esearch 20060628//EN" "https://eutils.ncbi.nlm.nih.gov/eutils/dtd/20060628/esearch.dtd">
<eSearchResult><Count>%d</Count><RetMax>%d</RetMax><RetStart>%d</RetStart><IdList>`, count, n, first)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<Id>%d</Id>", first+i)
	}
	b.WriteString("</IdList></eSearchResult>")
	return b.String()
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
