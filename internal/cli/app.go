package cli

import (
	"context"
	"fmt"

	"github.com/dyike/StockInsights/config"
	"github.com/dyike/StockInsights/internal/agents"
	"github.com/dyike/StockInsights/internal/dataflows"
	"github.com/dyike/StockInsights/internal/service"
	"github.com/dyike/StockInsights/internal/tools"
)

// app holds the explicitly constructed components shared by the commands.
type app struct {
	cfg    *config.Config
	router *tools.Router
}

func newApp(cfg *config.Config) (*app, error) {
	client, err := dataflows.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:    cfg,
		router: tools.NewRouter(service.NewStockService(client)),
	}, nil
}

func (a *app) newAssistant(ctx context.Context) (*agents.Assistant, error) {
	chat, err := agents.NewChatModel(ctx, a.cfg)
	if err != nil {
		return nil, err
	}

	assistant, err := agents.NewAssistant(chat, a.router, agents.WithAPIKeyVar(a.cfg.LLMAPIKeyVar()))
	if err != nil {
		return nil, fmt.Errorf("create assistant: %w", err)
	}
	return assistant, nil
}
