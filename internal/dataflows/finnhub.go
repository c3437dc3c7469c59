package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"

	"github.com/dyike/StockInsights/config"
)

// FinnhubClient handles Finnhub API operations
type FinnhubClient struct {
	client *resty.Client
	apiKey string
}

// NewFinnhubClient creates a new Finnhub client
func NewFinnhubClient(cfg *config.Config) *FinnhubClient {
	client := resty.New()
	client.SetBaseURL(cfg.MarketData.FinnhubBaseURL)
	client.SetTimeout(cfg.MarketDataTimeout())
	client.SetHeader("Accept", "application/json")
	client.SetRetryCount(cfg.MarketData.Retries)
	client.SetRetryWaitTime(500 * time.Millisecond)
	client.SetRetryMaxWaitTime(5 * time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r != nil && (r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500)
	})

	return &FinnhubClient{
		client: client,
		apiKey: cfg.MarketData.FinnhubAPIKey,
	}
}

// Quote fetches /quote. Keys: c (current price), dp (percent change), v (volume).
func (fc *FinnhubClient) Quote(ctx context.Context, symbol string) (*QuoteData, error) {
	fields, err := fc.getObject(ctx, "/quote", map[string]string{
		"symbol": NormalizeSymbol(symbol),
	})
	if err != nil || fields == nil {
		return nil, err
	}

	return &QuoteData{
		CurrentPrice:  decimalField(fields, "c"),
		ChangePercent: decimalField(fields, "dp"),
		Volume:        integerField(fields, "v"),
	}, nil
}

// CompanyProfile fetches /stock/profile2.
func (fc *FinnhubClient) CompanyProfile(ctx context.Context, symbol string) (*ProfileData, error) {
	fields, err := fc.getObject(ctx, "/stock/profile2", map[string]string{
		"symbol": NormalizeSymbol(symbol),
	})
	if err != nil || fields == nil {
		return nil, err
	}

	return &ProfileData{
		Name:      stringField(fields, "name"),
		MarketCap: decimalField(fields, "marketCapitalization"),
		PERatio:   decimalField(fields, "peTTM"),
	}, nil
}

// CompanyNews fetches /company-news for the inclusive date window.
func (fc *FinnhubClient) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsData, error) {
	body, err := fc.get(ctx, "/company-news", map[string]string{
		"symbol": NormalizeSymbol(symbol),
		"from":   formatDate(from),
		"to":     formatDate(to),
	})
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, nil
	}

	news := make([]NewsData, 0, len(items))
	for _, raw := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			continue
		}
		news = append(news, NewsData{
			Headline: stringField(fields, "headline"),
			Source:   stringField(fields, "source"),
			URL:      stringField(fields, "url"),
		})
	}
	return news, nil
}

// getObject returns nil fields, without error, when the payload is not a
// JSON object or is an empty one.
func (fc *FinnhubClient) getObject(ctx context.Context, path string, params map[string]string) (map[string]json.RawMessage, error) {
	body, err := fc.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

func (fc *FinnhubClient) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	log.Debug().Str("path", path).Str("symbol", params["symbol"]).Msg("finnhub request")

	resp, err := fc.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("token", fc.apiKey).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("finnhub %s: %w", path, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("finnhub %s: API error %d: %s", path, resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}

func decimalField(fields map[string]json.RawMessage, key string) decimal.NullDecimal {
	var d decimal.NullDecimal
	if raw, ok := fields[key]; ok {
		if err := json.Unmarshal(raw, &d); err != nil {
			return decimal.NullDecimal{}
		}
	}
	return d
}

func integerField(fields map[string]json.RawMessage, key string) *int64 {
	d := decimalField(fields, key)
	if !d.Valid {
		return nil
	}
	v := d.Decimal.IntPart()
	return &v
}

func stringField(fields map[string]json.RawMessage, key string) *string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}
