// Package catalog looks products up in the OpenFoodFacts database.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the public OpenFoodFacts endpoint.
const DefaultBaseURL = "https://world.openfoodfacts.org"

// Unknown fills product fields the catalog does not provide.
const Unknown = "Unknown"

// searchPageSize is how many hits are scanned for one with ingredient text.
const searchPageSize = 5

var (
	// ErrProductNotFound is returned when a search has no results.
	ErrProductNotFound = errors.New("product not found")
	// ErrCircuitOpen is returned while the catalog is considered down.
	ErrCircuitOpen = gobreaker.ErrOpenState
)

// Product is the subset of a catalog entry the analysis needs.
type Product struct {
	Name        string `json:"product_name"`
	Brand       string `json:"brands"`
	Ingredients string `json:"ingredients_text"`
}

// Config configures a Client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MaxFailures   int
	ResetInterval time.Duration
	UserAgent     string
}

// Client searches the catalog through a circuit breaker.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	cb        *gobreaker.CircuitBreaker
	logger    *slog.Logger
}

// NewClient creates a Client. Zero config values take defaults.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetInterval <= 0 {
		cfg.ResetInterval = time.Minute
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "nutribot/1.0"
	}

	log := logger.With("component", "catalog")
	settings := gobreaker.Settings{
		Name:        "openfoodfacts",
		MaxRequests: 1,
		Interval:    cfg.ResetInterval,
		Timeout:     cfg.ResetInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.MaxFailures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrProductNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		http:      httpClient,
		cb:        gobreaker.NewCircuitBreaker(settings),
		logger:    log,
	}
}

type searchResponse struct {
	Products []Product `json:"products"`
}

// Search returns the first hit for query that lists ingredients, or
// ErrProductNotFound.
func (c *Client) Search(ctx context.Context, query string) (Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.cb.Execute(func() (any, error) {
		return c.search(ctx, query)
	})
	if err != nil {
		if !errors.Is(err, ErrProductNotFound) {
			c.logger.WarnContext(ctx, "Catalog search failed", "query", query, "error", err)
		}
		return Product{}, err
	}
	return res.(Product), nil
}

func (c *Client) search(ctx context.Context, query string) (Product, error) {
	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(searchPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cgi/search.pl?"+params.Encode(), nil)
	if err != nil {
		return Product{}, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Product{}, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Product{}, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	p, ok := lo.Find(body.Products, func(p Product) bool {
		return strings.TrimSpace(p.Ingredients) != ""
	})
	if !ok {
		return Product{}, fmt.Errorf("%w: %q has no product with ingredients", ErrProductNotFound, query)
	}
	if p.Name == "" {
		p.Name = Unknown
	}
	if p.Brand == "" {
		p.Brand = Unknown
	}
	c.logger.DebugContext(ctx, "Catalog match", "query", query, "product", p.Name)
	return p, nil
}
