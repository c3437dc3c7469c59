package tools

import (
	"context"
	"fmt"
	"reflect"

	"github.com/phuslu/log"

	"github.com/dyike/StockInsights/consts"
	"github.com/dyike/StockInsights/internal/service"
)

type ToolName int

const (
	ToolUnknown ToolName = iota
	ToolStockQuote
	ToolCompanyProfile
	ToolCompareStocks
	ToolMarketNews
)

var toolNames = map[string]ToolName{
	consts.ToolStockQuote:     ToolStockQuote,
	consts.ToolCompanyProfile: ToolCompanyProfile,
	consts.ToolCompareStocks:  ToolCompareStocks,
	consts.ToolMarketNews:     ToolMarketNews,
}

// ParseToolName maps a wire name onto the enumerated tool set.
func ParseToolName(name string) (ToolName, bool) {
	t, ok := toolNames[name]
	if !ok {
		return ToolUnknown, false
	}
	return t, true
}

func (t ToolName) String() string {
	for name, v := range toolNames {
		if v == t {
			return name
		}
	}
	return "unknown"
}

// Envelope is the tool result fed back to the model: either a typed
// payload or an error, never both.
type Envelope struct {
	Type  string `json:"type,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Executor runs one named tool with already-decoded arguments.
type Executor interface {
	Execute(ctx context.Context, name string, args map[string]any) Envelope
}

type Router struct {
	stocks *service.StockService
}

func NewRouter(stocks *service.StockService) *Router {
	return &Router{stocks: stocks}
}

func (r *Router) Execute(ctx context.Context, name string, args map[string]any) Envelope {
	tool, ok := ParseToolName(name)
	if !ok {
		log.Warn().Str("tool", name).Msg("model requested unknown tool")
		return Envelope{Error: fmt.Sprintf(consts.ErrUnknownToolFmt, name)}
	}

	log.Info().Str("tool", tool.String()).Interface("args", args).Msg("executing tool")

	var data any
	switch tool {
	case ToolStockQuote:
		data = r.stocks.GetStockQuote(ctx, tickerArg(args))
	case ToolCompanyProfile:
		data = r.stocks.GetCompanyProfile(ctx, tickerArg(args))
	case ToolCompareStocks:
		data = r.stocks.CompareStocks(ctx, tickersArg(args))
	case ToolMarketNews:
		data = r.stocks.GetMarketNews(ctx, tickerArg(args))
	}
	return Envelope{Type: tool.String(), Data: data}
}

// tickerArg reads "ticker", treating a missing value as the empty string.
func tickerArg(args map[string]any) string {
	v, ok := args["ticker"]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// tickersArg reads "tickers". Falsy values become an empty list and a
// lone value becomes a one-element list.
func tickersArg(args map[string]any) []string {
	v := args["tickers"]
	if isFalsy(v) {
		return []string{}
	}

	list, ok := v.([]any)
	if !ok {
		list = []any{v}
	}

	tickers := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			tickers = append(tickers, s)
			continue
		}
		tickers = append(tickers, fmt.Sprint(item))
	}
	return tickers
}

func isFalsy(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Int, reflect.Int64, reflect.Int32:
		return rv.Int() == 0
	}
	return false
}
