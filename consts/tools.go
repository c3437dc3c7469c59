package consts

// Tool names advertised to the model
const (
	ToolStockQuote     = "get_stock_quote"
	ToolCompanyProfile = "get_company_profile"
	ToolCompareStocks  = "compare_stocks"
	ToolMarketNews     = "get_market_news"
)
