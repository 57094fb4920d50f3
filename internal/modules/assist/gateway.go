package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SalesPoint is one day of sales history fed into the forecast.
type SalesPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// Gateway is the provider-agnostic interface for the suggestion backend.
// The calls are opaque pass-throughs with no retry or caching contract.
type Gateway interface {
	// SuggestLineItem completes a partial line-item description.
	SuggestLineItem(ctx context.Context, partial string) (string, error)
	// ForecastSales turns daily sales points into a textual forecast.
	ForecastSales(ctx context.Context, points []SalesPoint) (string, error)
}

type httpGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a Gateway backed by a remote suggestion service.
func NewHTTPGateway(baseURL string) Gateway {
	return &httpGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *httpGateway) SuggestLineItem(ctx context.Context, partial string) (string, error) {
	var out struct {
		Suggestion string `json:"suggestion"`
	}
	in := map[string]string{"partialDescription": partial}
	if err := g.post(ctx, "/v1/suggest-line-item", in, &out); err != nil {
		return "", err
	}
	return out.Suggestion, nil
}

func (g *httpGateway) ForecastSales(ctx context.Context, points []SalesPoint) (string, error) {
	var out struct {
		Forecast string `json:"forecast"`
	}
	in := map[string]any{"salesData": points}
	if err := g.post(ctx, "/v1/forecast-sales", in, &out); err != nil {
		return "", err
	}
	return out.Forecast, nil
}

func (g *httpGateway) post(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("suggestion service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("suggestion service returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
