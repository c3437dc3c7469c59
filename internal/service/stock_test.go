package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/StockInsights/internal/dataflows"
)

type fakeClient struct {
	quotes   map[string]*dataflows.QuoteData
	profiles map[string]*dataflows.ProfileData
	news     []dataflows.NewsData
	err      error
	panicMsg string

	calls    []string
	from, to time.Time
}

func (f *fakeClient) Quote(_ context.Context, symbol string) (*dataflows.QuoteData, error) {
	f.calls = append(f.calls, "quote:"+symbol)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes[symbol], nil
}

func (f *fakeClient) CompanyProfile(_ context.Context, symbol string) (*dataflows.ProfileData, error) {
	f.calls = append(f.calls, "profile:"+symbol)
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[symbol], nil
}

func (f *fakeClient) CompanyNews(_ context.Context, symbol string, from, to time.Time) ([]dataflows.NewsData, error) {
	f.calls = append(f.calls, "news:"+symbol)
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	return f.news, nil
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func str(s string) *string { return &s }

func TestGetStockQuote(t *testing.T) {
	vol := int64(1000)
	client := &fakeClient{quotes: map[string]*dataflows.QuoteData{
		"AAPL": {CurrentPrice: price("189.5"), ChangePercent: price("1.2"), Volume: &vol},
	}}
	svc := NewStockService(client)

	q := svc.GetStockQuote(context.Background(), "AAPL")
	assert.Equal(t, "AAPL", q.Ticker)
	assert.Nil(t, q.Error)
	assert.Equal(t, "189.5", q.CurrentPrice.Decimal.String())
	assert.Equal(t, int64(1000), *q.Volume)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ticker":"AAPL","current_price":189.5,"change_percent":1.2,"volume":1000,"error":null}`, string(out))
}

func TestGetStockQuote_NoData(t *testing.T) {
	svc := NewStockService(&fakeClient{})

	q := svc.GetStockQuote(context.Background(), "NOPE")
	require.NotNil(t, q.Error)
	assert.Equal(t, "No quote data available.", *q.Error)
	assert.False(t, q.CurrentPrice.Valid)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ticker":"NOPE","current_price":null,"change_percent":null,"volume":null,"error":"No quote data available."}`, string(out))
}

func TestGetStockQuote_ProviderError(t *testing.T) {
	svc := NewStockService(&fakeClient{err: errors.New("API error 429: limit")})

	q := svc.GetStockQuote(context.Background(), "AAPL")
	require.NotNil(t, q.Error)
	assert.Equal(t, "Failed to fetch quote: API error 429: limit", *q.Error)
}

func TestGetStockQuote_RecoversPanic(t *testing.T) {
	svc := NewStockService(&fakeClient{panicMsg: "nil map"})

	q := svc.GetStockQuote(context.Background(), "AAPL")
	require.NotNil(t, q)
	require.NotNil(t, q.Error)
	assert.Equal(t, "Failed to fetch quote: nil map", *q.Error)
}

func TestGetCompanyProfile(t *testing.T) {
	client := &fakeClient{profiles: map[string]*dataflows.ProfileData{
		"TSLA": {Name: str("Tesla Inc"), MarketCap: price("780000")},
	}}
	svc := NewStockService(client)

	p := svc.GetCompanyProfile(context.Background(), "TSLA")
	assert.Nil(t, p.Error)
	assert.Equal(t, "Tesla Inc", *p.Name)
	assert.False(t, p.PERatio.Valid)

	empty := svc.GetCompanyProfile(context.Background(), "ZZZ")
	require.NotNil(t, empty.Error)
	assert.Equal(t, "No company profile found.", *empty.Error)

	failing := NewStockService(&fakeClient{err: errors.New("timeout")})
	p = failing.GetCompanyProfile(context.Background(), "TSLA")
	require.NotNil(t, p.Error)
	assert.Equal(t, "Failed to fetch company profile: timeout", *p.Error)
}

func TestCompareStocks(t *testing.T) {
	client := &fakeClient{
		quotes: map[string]*dataflows.QuoteData{
			"AAPL": {CurrentPrice: price("1")},
		},
		profiles: map[string]*dataflows.ProfileData{
			"MSFT": {Name: str("Microsoft")},
		},
	}
	svc := NewStockService(client)

	res := svc.CompareStocks(context.Background(), []string{"AAPL", "MSFT"})
	assert.Equal(t, []string{"AAPL", "MSFT"}, res.Tickers)
	require.Len(t, res.Quotes, 2)
	require.Len(t, res.Profiles, 2)

	assert.Equal(t, "AAPL", res.Quotes[0].Ticker)
	assert.Nil(t, res.Quotes[0].Error)
	assert.Equal(t, "MSFT", res.Quotes[1].Ticker)
	assert.Equal(t, "No quote data available.", *res.Quotes[1].Error)
	assert.Equal(t, "No company profile found.", *res.Profiles[0].Error)
	assert.Equal(t, "Microsoft", *res.Profiles[1].Name)

	assert.Equal(t, []string{"quote:AAPL", "profile:AAPL", "quote:MSFT", "profile:MSFT"}, client.calls)
}

func TestCompareStocks_Empty(t *testing.T) {
	svc := NewStockService(&fakeClient{})

	res := svc.CompareStocks(context.Background(), nil)
	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tickers":[],"quotes":[],"profiles":[]}`, string(out))
}

func TestGetMarketNews(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	var news []dataflows.NewsData
	for i := 0; i < 7; i++ {
		news = append(news, dataflows.NewsData{
			Headline: str(fmt.Sprintf("headline %d", i)),
			Source:   str("Reuters"),
			URL:      str(fmt.Sprintf("https://example.com/%d", i)),
		})
	}
	client := &fakeClient{news: news}
	svc := NewStockService(client, WithClock(func() time.Time { return now }))

	items := svc.GetMarketNews(context.Background(), "AAPL")
	require.Len(t, items, 5)
	for i, item := range items {
		assert.Equal(t, "AAPL", item.Ticker)
		assert.Equal(t, fmt.Sprintf("headline %d", i), *item.Headline)
		assert.Nil(t, item.Error)
	}
	assert.Equal(t, now, client.to)
	assert.Equal(t, now.AddDate(0, 0, -7), client.from)
}

func TestGetMarketNews_WindowIsCalendarDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// DST starts on 2024-03-10, so seven days back is only 167 hours.
	now := time.Date(2024, 3, 15, 0, 30, 0, 0, ny)
	client := &fakeClient{}
	svc := NewStockService(client, WithClock(func() time.Time { return now }))

	svc.GetMarketNews(context.Background(), "AAPL")
	assert.Equal(t, "2024-03-08", client.from.Format("2006-01-02"))
	assert.Equal(t, "2024-03-15", client.to.Format("2006-01-02"))
}

func TestGetMarketNews_EmptyAndError(t *testing.T) {
	svc := NewStockService(&fakeClient{})
	items := svc.GetMarketNews(context.Background(), "AAPL")
	require.Len(t, items, 1)
	assert.Equal(t, "No recent news found for this ticker.", *items[0].Error)
	assert.Nil(t, items[0].Headline)

	svc = NewStockService(&fakeClient{err: errors.New("connection reset")})
	items = svc.GetMarketNews(context.Background(), "AAPL")
	require.Len(t, items, 1)
	assert.Equal(t, "AAPL", items[0].Ticker)
	assert.Equal(t, "Failed to fetch market news: connection reset", *items[0].Error)
}
