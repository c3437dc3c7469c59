package consts

// User-facing texts returned in place of a model answer.
const (
	// Format with the provider's API key variable name.
	MsgUpstreamUnreachable = "I couldn't reach the AI service right now. Please double-check your `%s` and try again in a moment."
	MsgEmptyAnswer         = "I was unable to generate a response."
	MsgIterationsExhausted = "I had trouble answering this question using the available stock data. Please try rephrasing or asking about a specific ticker."
	MsgServerError         = "Sorry — something went wrong on the server while answering that."
)

// Texts carried in tool results.
const (
	ErrToolArgsUnparsable = "Tool arguments could not be parsed."
	ErrUnknownToolFmt     = "Unknown tool: %s"

	ErrNoQuoteData      = "No quote data available."
	ErrNoCompanyProfile = "No company profile found."
	ErrNoRecentNews     = "No recent news found for this ticker."

	ErrQuoteFetchFmt   = "Failed to fetch quote: %s"
	ErrProfileFetchFmt = "Failed to fetch company profile: %s"
	ErrNewsFetchFmt    = "Failed to fetch market news: %s"
)
