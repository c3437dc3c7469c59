package debug

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/phuslu/log"

	"github.com/dyike/StockInsights/config"
)

const defaultDebugPort = 52538

type EinoDebugger struct {
	config *config.DebugConfig
	init   func(ctx context.Context, port string) error
}

func NewEinoDebugger(cfg *config.DebugConfig) *EinoDebugger {
	return &EinoDebugger{
		config: cfg,
		init: func(ctx context.Context, port string) error {
			return devops.Init(ctx, devops.WithDevServerPort(port))
		},
	}
}

// Initialize starts the eino visual debug server when enabled.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.config.EinoDebugEnabled {
		return nil
	}

	if err := d.init(ctx, strconv.Itoa(d.port())); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}

	log.Info().Str("url", d.GetDebugURL()).Msg("eino debug server started")
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.config.EinoDebugEnabled
}

func (d *EinoDebugger) GetDebugURL() string {
	if !d.config.EinoDebugEnabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.port())
}

func (d *EinoDebugger) port() int {
	if d.config.EinoDebugPort > 0 {
		return d.config.EinoDebugPort
	}
	return defaultDebugPort
}
