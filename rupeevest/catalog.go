// Package rupeevest implements a riskfolio.FundCatalog on top of the asset
// class screener of rupeevest.com.
package rupeevest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/riskfolio"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the screener's site.
const DefaultBaseURL = "https://www.rupeevest.com"

// Limit is the maximum number of funds returned for a category.
const Limit = 10

const screenerPath = "/functionalities/asset_class_section?"

// selection is the screener query: equity asset classes, funds rated 3 stars
// and above.
var selection = map[string]any{
	"selected_schemes":   []string{"1", "2", "3", "50", "4", "5"},
	"selected_rating":    []string{"3", "4", "5"},
	"selected_amc":       []string{"all"},
	"selected_manager":   []string{"all"},
	"selected_index":     []string{"all"},
	"selected_fund_type": []string{"1"},
	"selected_from_date": 0,
	"selected_to_date":   0,
	"condn_type":         "asset",
}

// Classification returns the screener classification listing the funds of c.
func Classification(c riskfolio.Category) (string, error) {
	switch c {
	case riskfolio.SmallCap:
		return "Equity : Small Cap", nil
	case riskfolio.MidCap:
		return "Equity : Mid Cap", nil
	case riskfolio.LargeCap:
		return "Equity : Large Cap", nil
	}
	return "", fmt.Errorf("unknown fund category %q", c)
}

// Catalog lists the best funds of each category.
//
// The screener is queried once and its result kept in memory until the next
// Refresh. It is safe for concurrent use.
type Catalog struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger

	mu        sync.RWMutex
	schemes   []scheme
	refreshed time.Time
}

var _ riskfolio.FundCatalog = (*Catalog)(nil)

// New returns a Catalog querying baseURL with client. Empty values stand for
// DefaultBaseURL and http.DefaultClient.
func New(baseURL string, client *http.Client, log zerolog.Logger) *Catalog {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Catalog{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		log:     log.With().Str("component", "rupeevest").Logger(),
	}
}

// Refresh queries the screener and replaces the funds in memory. On failure
// the previous funds are kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	schemes, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.schemes, c.refreshed = schemes, time.Now()
	c.mu.Unlock()
	c.log.Info().Int("funds", len(schemes)).Msg("catalog refreshed")
	return nil
}

// Refreshed returns the time of the last successful Refresh, zero if none.
func (c *Catalog) Refreshed() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshed
}

// Funds returns up to Limit funds of category cat, best first. The amount is
// not used by the ranking, callers slice the list to their needs.
func (c *Catalog) Funds(ctx context.Context, cat riskfolio.Category, amount riskfolio.Money) ([]riskfolio.Fund, error) {
	classification, err := Classification(cat)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	schemes := c.schemes
	c.mu.RUnlock()
	if schemes == nil {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
		c.mu.RLock()
		schemes = c.schemes
		c.mu.RUnlock()
	}

	best := rank(filter(schemes, classification))
	if len(best) > Limit {
		best = best[:Limit]
	}
	funds := make([]riskfolio.Fund, len(best))
	for i, s := range best {
		funds[i] = s.fund()
	}
	c.log.Debug().Str("category", string(cat)).Int("funds", len(funds)).Msg("funds listed")
	return funds, nil
}

func (c *Catalog) fetch(ctx context.Context) ([]scheme, error) {
	body, err := json.Marshal(selection)
	if err != nil {
		return nil, err
	}
	addr := c.baseURL + screenerPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cannot create request %q: %w", addr, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot query fund screener: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http POST %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("cannot read fund screener response: %w", err)
	}
	return parseSchemes(buf.Bytes())
}

// parseSchemes reads the rows of a screener response.
func parseSchemes(data []byte) ([]scheme, error) {
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, fmt.Errorf("invalid fund screener response: %w", err)
	}
	const path = "$.schemedata"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing fund screener response %q: %w", path, err)
	}
	rows, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing fund screener response %q: not a list but %T", path, jval)
	}

	schemes := make([]scheme, 0, len(rows))
	for _, row := range rows {
		if m, ok := row.(map[string]any); ok {
			schemes = append(schemes, newScheme(m))
		}
	}
	return schemes, nil
}
