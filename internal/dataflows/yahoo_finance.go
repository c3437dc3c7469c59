package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/dyike/StockInsights/config"
)

var million = decimal.NewFromInt(1_000_000)

// YahooFinanceClient serves quotes and profiles from Yahoo Finance. Yahoo
// has no company-news feed in finance-go, so news is delegated.
type YahooFinanceClient struct {
	news  MarketDataClient
	retry *RetryConfig

	getQuote  func(symbol string) (*finance.Quote, error)
	getEquity func(symbol string) (*finance.Equity, error)
}

// NewYahooFinanceClient creates a new Yahoo Finance client
func NewYahooFinanceClient(cfg *config.Config, news MarketDataClient) *YahooFinanceClient {
	return &YahooFinanceClient{
		news:      news,
		retry:     DefaultRetryConfig(cfg.MarketData.Retries),
		getQuote:  quote.Get,
		getEquity: equity.Get,
	}
}

func (yf *YahooFinanceClient) Quote(ctx context.Context, symbol string) (*QuoteData, error) {
	symbol = NormalizeSymbol(symbol)

	var q *finance.Quote
	err := WithRetry(ctx, yf.retry, func() error {
		var err error
		q, err = yf.getQuote(symbol)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, nil
	}

	volume := int64(q.RegularMarketVolume)
	return &QuoteData{
		CurrentPrice:  decimal.NewNullDecimal(decimal.NewFromFloat(q.RegularMarketPrice)),
		ChangePercent: decimal.NewNullDecimal(decimal.NewFromFloat(q.RegularMarketChangePercent)),
		Volume:        &volume,
	}, nil
}

// CompanyProfile reports market cap in millions so both providers agree.
func (yf *YahooFinanceClient) CompanyProfile(ctx context.Context, symbol string) (*ProfileData, error) {
	symbol = NormalizeSymbol(symbol)

	var e *finance.Equity
	err := WithRetry(ctx, yf.retry, func() error {
		var err error
		e, err = yf.getEquity(symbol)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get company info for %s: %w", symbol, err)
	}
	if e == nil {
		return nil, nil
	}

	profile := &ProfileData{}
	switch {
	case e.LongName != "":
		profile.Name = &e.LongName
	case e.ShortName != "":
		profile.Name = &e.ShortName
	}
	if e.MarketCap > 0 {
		profile.MarketCap = decimal.NewNullDecimal(decimal.NewFromInt(e.MarketCap).Div(million))
	}
	if e.TrailingPE != 0 {
		profile.PERatio = decimal.NewNullDecimal(decimal.NewFromFloat(e.TrailingPE))
	}
	return profile, nil
}

func (yf *YahooFinanceClient) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsData, error) {
	return yf.news.CompanyNews(ctx, symbol, from, to)
}
