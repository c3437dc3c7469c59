package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/dyike/StockInsights/config"
	"github.com/dyike/StockInsights/internal/api"
	"github.com/dyike/StockInsights/internal/debug"
	"github.com/dyike/StockInsights/internal/logger"
	"github.com/dyike/StockInsights/internal/mcp"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var (
		cfg        *config.Config
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:   "stockinsights",
		Short: "StockInsights - AI stock Q&A assistant",
		Long: `StockInsights answers natural-language questions about stocks. A language model
looks up quotes, company profiles, comparisons and news before it answers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Logging.Level = logLevel
			}
			logger.Setup(loaded.Logging)
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: serve HTTP
			return runServe(cmd.Context(), cfg)
		},
	}

	get := func() *config.Config { return cfg }

	rootCmd.AddCommand(newServeCmd(get))
	rootCmd.AddCommand(newAskCmd(get))
	rootCmd.AddCommand(newToolCmd(get))
	rootCmd.AddCommand(newMCPCmd(get))
	rootCmd.AddCommand(newConfigCmd(get))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file path (TOML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	return rootCmd
}

func newServeCmd(cfg func() *config.Config) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if host != "" {
				c.Server.Host = host
			}
			if port != 0 {
				c.Server.Port = port
			}
			return runServe(cmd.Context(), c)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	if err := debug.NewEinoDebugger(&cfg.Debug).Initialize(ctx); err != nil {
		log.Warn().Err(err).Msg("eino debug unavailable")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	assistant, err := a.newAssistant(ctx)
	if err != nil {
		return err
	}

	mcpServer := mcp.NewServer(a.router, Version)
	server := api.NewServer(&cfg.Server, assistant, api.WithHandler("/mcp", mcp.NewHTTPHandler(mcpServer)))

	log.Info().
		Str("llm_provider", cfg.LLM.Provider).
		Str("model", cfg.LLMModel()).
		Str("market_data", cfg.MarketData.Provider).
		Msg("starting stockinsights")
	return server.Start(ctx, cfg.Addr())
}

func newAskCmd(cfg func() *config.Config) *cobra.Command {
	var noStream bool
	cmd := &cobra.Command{
		Use:   "ask [QUESTION...]",
		Short: "Ask a question and print the answer",
		Long: `Ask a single question from the terminal. Without arguments the question is
prompted for interactively.
Example: stockinsights ask "How is AAPL doing today?"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if err := c.Validate(); err != nil {
				return err
			}

			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				q, err := PromptForQuestion()
				if err != nil {
					return err
				}
				question = q
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := newApp(c)
			if err != nil {
				return err
			}
			assistant, err := a.newAssistant(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			DisplayQuestion(out, question)

			if noStream {
				answer, err := assistant.Answer(ctx, question)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, answer)
				return nil
			}

			for fragment, err := range assistant.Stream(ctx, question) {
				if err != nil {
					return err
				}
				fmt.Fprint(out, fragment)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "Wait for the full answer instead of streaming")
	return cmd
}

func newToolCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tool NAME [JSON_ARGS]",
		Short: "Run one market-data tool directly",
		Long: `Run a tool the model can call and print its result envelope.
Example: stockinsights tool compare_stocks '{"tickers":["AAPL","MSFT"]}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if err := c.ValidateMarketData(); err != nil {
				return err
			}

			toolArgs := map[string]any{}
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
					return fmt.Errorf("tool arguments must be a JSON object: %w", err)
				}
			}

			a, err := newApp(c)
			if err != nil {
				return err
			}

			env := a.router.Execute(cmd.Context(), args[0], toolArgs)
			body, err := json.MarshalIndent(env, "", "  ")
			if err != nil {
				return fmt.Errorf("encode tool result: %w", err)
			}
			DisplayToolResult(cmd.OutOrStdout(), args[0], string(body), env.Error != "")
			return nil
		},
	}
}

func newMCPCmd(cfg func() *config.Config) *cobra.Command {
	var (
		stdio bool
		addr  string
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the market-data tools over MCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if err := c.ValidateMarketData(); err != nil {
				return err
			}

			a, err := newApp(c)
			if err != nil {
				return err
			}
			s := mcp.NewServer(a.router, Version)

			if stdio {
				return mcp.ServeStdio(s)
			}

			if addr == "" {
				addr = c.MCP.Addr
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			server := api.NewServer(&config.ServerConfig{GinMode: c.Server.GinMode}, nil,
				api.WithHandler("/mcp", mcp.NewHTTPHandler(s)))
			return server.Start(ctx, addr)
		},
	}
	cmd.Flags().BoolVar(&stdio, "stdio", false, "Serve over stdin/stdout")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address for streamable HTTP (overrides MCP_ADDR)")
	return cmd
}

func newConfigCmd(cfg func() *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cfg().Redacted().TOML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg().Validate(); err != nil {
				DisplayError(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("configuration is valid"))
			return nil
		},
	})

	return configCmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "StockInsights %s\n", Version)
		},
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
