package service

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/dyike/StockInsights/consts"
	"github.com/dyike/StockInsights/internal/dataflows"
	"github.com/dyike/StockInsights/models"
)

const (
	newsWindowDays = 7
	maxNewsItems   = 5
)

// StockService turns provider payloads into the records handed to the
// model. Every lookup is total: failures land in the record's error field.
type StockService struct {
	client dataflows.MarketDataClient
	now    func() time.Time
}

type Option func(*StockService)

// WithClock overrides the clock used for the news window.
func WithClock(now func() time.Time) Option {
	return func(s *StockService) {
		s.now = now
	}
}

func NewStockService(client dataflows.MarketDataClient, opts ...Option) *StockService {
	s := &StockService{
		client: client,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *StockService) GetStockQuote(ctx context.Context, ticker string) (quote *models.StockQuote) {
	quote = &models.StockQuote{Ticker: ticker}
	defer recoverInto(&quote.Error, consts.ErrQuoteFetchFmt)

	data, err := s.client.Quote(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("quote lookup failed")
		quote.Error = models.String(fmt.Sprintf(consts.ErrQuoteFetchFmt, err))
		return quote
	}
	if data == nil {
		quote.Error = models.String(consts.ErrNoQuoteData)
		return quote
	}

	quote.CurrentPrice = data.CurrentPrice
	quote.ChangePercent = data.ChangePercent
	quote.Volume = data.Volume
	return quote
}

func (s *StockService) GetCompanyProfile(ctx context.Context, ticker string) (profile *models.CompanyProfile) {
	profile = &models.CompanyProfile{Ticker: ticker}
	defer recoverInto(&profile.Error, consts.ErrProfileFetchFmt)

	data, err := s.client.CompanyProfile(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("profile lookup failed")
		profile.Error = models.String(fmt.Sprintf(consts.ErrProfileFetchFmt, err))
		return profile
	}
	if data == nil {
		profile.Error = models.String(consts.ErrNoCompanyProfile)
		return profile
	}

	profile.Name = data.Name
	profile.MarketCap = data.MarketCap
	profile.PERatio = data.PERatio
	return profile
}

// CompareStocks looks tickers up one at a time, in order, quote before
// profile. A failing ticker never stops the rest.
func (s *StockService) CompareStocks(ctx context.Context, tickers []string) *models.CompareStocksResult {
	result := &models.CompareStocksResult{
		Tickers:  tickers,
		Quotes:   make([]*models.StockQuote, 0, len(tickers)),
		Profiles: make([]*models.CompanyProfile, 0, len(tickers)),
	}
	if result.Tickers == nil {
		result.Tickers = []string{}
	}

	for _, ticker := range tickers {
		result.Quotes = append(result.Quotes, s.GetStockQuote(ctx, ticker))
		result.Profiles = append(result.Profiles, s.GetCompanyProfile(ctx, ticker))
	}
	return result
}

// GetMarketNews returns up to five headlines from the last seven days.
// Failures and empty windows yield a single item carrying the error.
func (s *StockService) GetMarketNews(ctx context.Context, ticker string) (items []*models.MarketNewsItem) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("ticker", ticker).Msg("news lookup panicked")
			items = []*models.MarketNewsItem{{
				Ticker: ticker,
				Error:  models.String(fmt.Sprintf(consts.ErrNewsFetchFmt, fmt.Sprint(r))),
			}}
		}
	}()

	to := s.now()
	from := to.AddDate(0, 0, -newsWindowDays)

	news, err := s.client.CompanyNews(ctx, ticker, from, to)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("news lookup failed")
		return []*models.MarketNewsItem{{
			Ticker: ticker,
			Error:  models.String(fmt.Sprintf(consts.ErrNewsFetchFmt, err)),
		}}
	}
	if len(news) == 0 {
		return []*models.MarketNewsItem{{
			Ticker: ticker,
			Error:  models.String(consts.ErrNoRecentNews),
		}}
	}

	if len(news) > maxNewsItems {
		news = news[:maxNewsItems]
	}
	items = make([]*models.MarketNewsItem, 0, len(news))
	for _, n := range news {
		items = append(items, &models.MarketNewsItem{
			Ticker:   ticker,
			Headline: n.Headline,
			Source:   n.Source,
			URL:      n.URL,
		})
	}
	return items
}

func recoverInto(dst **string, format string) {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Msg("market data lookup panicked")
		*dst = models.String(fmt.Sprintf(format, fmt.Sprint(r)))
	}
}
