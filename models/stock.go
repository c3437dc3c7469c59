package models

import "github.com/shopspring/decimal"

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// StockQuote is the latest quote for one ticker. Absent fields encode as null.
type StockQuote struct {
	Ticker        string              `json:"ticker"`
	CurrentPrice  decimal.NullDecimal `json:"current_price"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	Volume        *int64              `json:"volume"`
	Error         *string             `json:"error"`
}

type CompanyProfile struct {
	Ticker    string              `json:"ticker"`
	Name      *string             `json:"name"`
	MarketCap decimal.NullDecimal `json:"market_cap"`
	PERatio   decimal.NullDecimal `json:"pe_ratio"`
	Error     *string             `json:"error"`
}

type MarketNewsItem struct {
	Ticker   string  `json:"ticker"`
	Headline *string `json:"headline"`
	Source   *string `json:"source"`
	URL      *string `json:"url"`
	Error    *string `json:"error"`
}

// CompareStocksResult aligns Quotes and Profiles positionally with Tickers.
type CompareStocksResult struct {
	Tickers  []string          `json:"tickers"`
	Quotes   []*StockQuote     `json:"quotes"`
	Profiles []*CompanyProfile `json:"profiles"`
}

// String returns a pointer to s, for optional record fields.
func String(s string) *string {
	return &s
}
