package dataflows

import (
	"fmt"

	"github.com/dyike/StockInsights/config"
)

// NewClient builds the market-data client selected by configuration.
func NewClient(cfg *config.Config) (MarketDataClient, error) {
	finnhub := NewFinnhubClient(cfg)

	switch cfg.MarketData.Provider {
	case config.MarketDataFinnhub, "":
		return finnhub, nil
	case config.MarketDataYahoo:
		return NewYahooFinanceClient(cfg, finnhub), nil
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", cfg.MarketData.Provider)
	}
}
