package dataflows

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MarketDataClient is the narrow view of a market-data provider. A nil
// record (or an empty news slice) means the provider answered with nothing
// usable; a non-nil error means the call itself failed.
type MarketDataClient interface {
	Quote(ctx context.Context, symbol string) (*QuoteData, error)
	CompanyProfile(ctx context.Context, symbol string) (*ProfileData, error)
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsData, error)
}

// QuoteData is a provider quote with every field optional.
type QuoteData struct {
	CurrentPrice  decimal.NullDecimal
	ChangePercent decimal.NullDecimal
	Volume        *int64
}

// ProfileData carries market capitalization in millions, as Finnhub reports it.
type ProfileData struct {
	Name      *string
	MarketCap decimal.NullDecimal
	PERatio   decimal.NullDecimal
}

type NewsData struct {
	Headline *string
	Source   *string
	URL      *string
}
