package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/cartsync/internal/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const maxBodySize = 1 << 20

// Client talks to the products/stock JSON API and implements both
// StockService and ProductCatalog.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	sfg     singleflight.Group // collapses identical in-flight GETs
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// a missing product is a valid answer, not a sick server
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		breaker: breaker,
	}
}

func (c *Client) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	var stock domain.Stock
	if err := c.getJSON(ctx, fmt.Sprintf("/stock/%d", productID), &stock); err != nil {
		return domain.Stock{}, fmt.Errorf("get stock %d: %w", productID, err)
	}
	if stock.ProductID == 0 {
		stock.ProductID = productID
	}
	return stock, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var product domain.Product
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", productID), &product); err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", productID, err)
	}
	if product.ID != productID {
		return domain.Product{}, fmt.Errorf("get product %d: response carries id %d", productID, product.ID)
	}
	return product, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	v, err, _ := c.sfg.Do(path, func() (interface{}, error) {
		return c.breaker.Execute(func() ([]byte, error) {
			return c.get(ctx, path)
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	if err := json.Unmarshal(v.([]byte), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
