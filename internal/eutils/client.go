// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eutils talks to the NCBI E-utilities: esearch for paginated id
// collection and efetch for batched article records.
package eutils

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-affiliations/internal/httputil"
	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

const (
	searchEndpoint = "esearch.fcgi"
	fetchEndpoint  = "efetch.fcgi"
	database       = "pubmed"
)

// Client issues E-utilities requests for one harvest configuration.
// Requests go out one at a time; Waiter paces consecutive pages and batches.
type Client struct {
	Config types.HarvestConfig
	HTTP   *httputil.Getter
	Waiter httputil.Waiter
	Logger *slog.Logger
}

// NewClient builds a Client whose requests retry according to cfg.Retry.
func NewClient(cfg types.HarvestConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		Config: cfg,
		HTTP: &httputil.Getter{
			Client: httpClient,
			Policy: httputil.Policy{
				MaxAttempts: cfg.Retry.MaxAttempts,
				Delay:       cfg.Retry.Delay,
			},
			Waiter:    httputil.SleepWaiter{},
			Logger:    logger,
			UserAgent: cfg.UserAgent,
		},
		Waiter: httputil.SleepWaiter{},
		Logger: logger,
	}
}

func (c *Client) searchURL(filter SearchFilter, offset int) string {
	params := c.baseParams()
	params.Set("term", filter.String())
	params.Set("retmax", strconv.Itoa(c.Config.RetMax))
	params.Set("retstart", strconv.Itoa(offset))
	return c.endpoint(searchEndpoint) + "?" + params.Encode()
}

func (c *Client) fetchURL(ids []string) string {
	params := c.baseParams()
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	return c.endpoint(fetchEndpoint) + "?" + params.Encode()
}

func (c *Client) baseParams() url.Values {
	params := url.Values{"db": {database}}
	if c.Config.APIKey != "" {
		params.Set("api_key", c.Config.APIKey)
	}
	if c.Config.Tool != "" {
		params.Set("tool", c.Config.Tool)
	}
	if c.Config.Email != "" {
		params.Set("email", c.Config.Email)
	}
	return params
}

func (c *Client) endpoint(name string) string {
	base := c.Config.BaseURL
	if base == "" {
		base = types.DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + name
}
