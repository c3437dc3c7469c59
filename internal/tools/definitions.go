package tools

import (
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/StockInsights/consts"
)

type ParamType string

const (
	ParamString      ParamType = "string"
	ParamStringArray ParamType = "array"
)

// Param describes one required tool argument.
type Param struct {
	Name string
	Type ParamType
	Desc string
}

// Spec is a transport-neutral tool description, rendered for the chat
// model by Definitions and for MCP hosts by the mcp package.
type Spec struct {
	Name   string
	Desc   string
	Params []Param
}

var specs = []Spec{
	{
		Name: consts.ToolStockQuote,
		Desc: "Get the latest quote for a single stock ticker.",
		Params: []Param{
			{Name: "ticker", Type: ParamString, Desc: "Stock ticker symbol, e.g. AAPL or MSFT."},
		},
	},
	{
		Name: consts.ToolCompanyProfile,
		Desc: "Get basic company information and valuation metrics.",
		Params: []Param{
			{Name: "ticker", Type: ParamString, Desc: "Stock ticker symbol, e.g. TSLA or AMZN."},
		},
	},
	{
		Name: consts.ToolCompareStocks,
		Desc: "Compare multiple stocks by fetching quotes and profiles.",
		Params: []Param{
			{Name: "tickers", Type: ParamStringArray, Desc: "List of stock ticker symbols."},
		},
	},
	{
		Name: consts.ToolMarketNews,
		Desc: "Get recent market news headlines for a company.",
		Params: []Param{
			{Name: "ticker", Type: ParamString, Desc: "Stock ticker symbol."},
		},
	},
}

// Specs lists the tools in a stable order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Definitions renders the tools for the chat model.
func Definitions() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(specs))
	for _, s := range specs {
		params := make(map[string]*schema.ParameterInfo, len(s.Params))
		for _, p := range s.Params {
			info := &schema.ParameterInfo{
				Type:     schema.String,
				Desc:     p.Desc,
				Required: true,
			}
			if p.Type == ParamStringArray {
				info.Type = schema.Array
				info.ElemInfo = &schema.ParameterInfo{Type: schema.String}
			}
			params[p.Name] = info
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        s.Name,
			Desc:        s.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}
