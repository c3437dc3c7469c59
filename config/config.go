package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"

	MarketDataFinnhub = "finnhub"
	MarketDataYahoo   = "yahoo"

	// FileEnvVar points at an optional TOML file read before the environment.
	FileEnvVar = "STOCKINSIGHTS_CONFIG"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	LLM        LLMConfig        `toml:"llm"`
	MarketData MarketDataConfig `toml:"market_data"`
	Logging    LoggingConfig    `toml:"logging"`
	Debug      DebugConfig      `toml:"debug"`
	MCP        MCPConfig        `toml:"mcp"`
}

type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	StaticDir string `toml:"static_dir"`
	GinMode   string `toml:"gin_mode"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	OpenAIAPIKey   string `toml:"openai_api_key"`
	OpenAIModel    string `toml:"openai_model"`
	DeepSeekAPIKey string `toml:"deepseek_api_key"`
	DeepSeekModel  string `toml:"deepseek_model"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type MarketDataConfig struct {
	Provider       string `toml:"provider"`
	FinnhubAPIKey  string `toml:"finnhub_api_key"`
	FinnhubBaseURL string `toml:"finnhub_base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Retries        int    `toml:"retries"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Eino visual debug configuration
type DebugConfig struct {
	EinoDebugEnabled bool `toml:"eino_debug_enabled"`
	EinoDebugPort    int  `toml:"eino_debug_port"`
}

type MCPConfig struct {
	Addr string `toml:"addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8000,
			StaticDir: "frontend",
			GinMode:   "release",
		},
		LLM: LLMConfig{
			Provider:       ProviderOpenAI,
			OpenAIModel:    "gpt-4o-mini",
			DeepSeekModel:  "deepseek-chat",
			TimeoutSeconds: 60,
		},
		MarketData: MarketDataConfig{
			Provider:       MarketDataFinnhub,
			FinnhubBaseURL: "https://finnhub.io/api/v1",
			TimeoutSeconds: 30,
			Retries:        1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			EinoDebugEnabled: false,
			EinoDebugPort:    52538,
		},
		MCP: MCPConfig{
			Addr: ":8081",
		},
	}
}

// Load builds the configuration once at startup. Precedence, lowest first:
// defaults, the optional TOML file, the .env file, the process environment.
// The result is not validated; call Validate before serving.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv(FileEnvVar)
	}
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, err
		}
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewLoadError(path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return NewLoadError(path, err)
	}
	return nil
}

func (c *Config) loadFromEnv() error {
	if val := os.Getenv("HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("PORT"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return NewValidationError("PORT", val, ErrInvalidValue)
		}
		c.Server.Port = port
	}
	if val := os.Getenv("STATIC_DIR"); val != "" {
		c.Server.StaticDir = val
	}
	if val := os.Getenv("GIN_MODE"); val != "" {
		c.Server.GinMode = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLM.Provider = strings.ToLower(val)
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.LLM.OpenAIAPIKey = val
	}
	if val := os.Getenv("OPENAI_MODEL"); val != "" {
		c.LLM.OpenAIModel = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.LLM.DeepSeekAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_MODEL"); val != "" {
		c.LLM.DeepSeekModel = val
	}
	if val := os.Getenv("LLM_BASE_URL"); val != "" {
		c.LLM.BaseURL = val
	}
	if val := os.Getenv("LLM_TIMEOUT_SECONDS"); val != "" {
		v, err := strconv.Atoi(val)
		if err != nil {
			return NewValidationError("LLM_TIMEOUT_SECONDS", val, ErrInvalidValue)
		}
		c.LLM.TimeoutSeconds = v
	}

	if val := os.Getenv("MARKET_DATA_PROVIDER"); val != "" {
		c.MarketData.Provider = strings.ToLower(val)
	}
	if val := os.Getenv("FINNHUB_API_KEY"); val != "" {
		c.MarketData.FinnhubAPIKey = val
	}
	if val := os.Getenv("FINNHUB_BASE_URL"); val != "" {
		c.MarketData.FinnhubBaseURL = val
	}
	if val := os.Getenv("MARKET_DATA_TIMEOUT_SECONDS"); val != "" {
		v, err := strconv.Atoi(val)
		if err != nil {
			return NewValidationError("MARKET_DATA_TIMEOUT_SECONDS", val, ErrInvalidValue)
		}
		c.MarketData.TimeoutSeconds = v
	}
	if val := os.Getenv("MARKET_DATA_RETRIES"); val != "" {
		v, err := strconv.Atoi(val)
		if err != nil {
			return NewValidationError("MARKET_DATA_RETRIES", val, ErrInvalidValue)
		}
		c.MarketData.Retries = v
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Logging.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Logging.Format = strings.ToLower(val)
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Debug.EinoDebugPort = port
		}
	}

	if val := os.Getenv("MCP_ADDR"); val != "" {
		c.MCP.Addr = val
	}
	return nil
}

// Validate reports every missing required variable at once, then checks
// enumerated values.
func (c *Config) Validate() error {
	var missing []string
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case ProviderDeepSeek:
		if c.LLM.DeepSeekAPIKey == "" {
			missing = append(missing, "DEEPSEEK_API_KEY")
		}
	default:
		return NewValidationError("LLM_PROVIDER", c.LLM.Provider, ErrInvalidValue)
	}
	// News always comes from Finnhub, whichever provider serves quotes.
	if c.MarketData.FinnhubAPIKey == "" {
		missing = append(missing, "FINNHUB_API_KEY")
	}
	if len(missing) > 0 {
		return &MissingEnvError{Vars: missing}
	}

	switch c.MarketData.Provider {
	case MarketDataFinnhub, MarketDataYahoo:
	default:
		return NewValidationError("MARKET_DATA_PROVIDER", c.MarketData.Provider, ErrInvalidValue)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewValidationError("PORT", strconv.Itoa(c.Server.Port), ErrInvalidValue)
	}
	return nil
}

// ValidateMarketData checks only what the tool runners need.
func (c *Config) ValidateMarketData() error {
	if c.MarketData.FinnhubAPIKey == "" {
		return &MissingEnvError{Vars: []string{"FINNHUB_API_KEY"}}
	}
	switch c.MarketData.Provider {
	case MarketDataFinnhub, MarketDataYahoo:
		return nil
	default:
		return NewValidationError("MARKET_DATA_PROVIDER", c.MarketData.Provider, ErrInvalidValue)
	}
}

// LLMAPIKeyVar names the variable holding the active provider's key.
func (c *Config) LLMAPIKeyVar() string {
	if c.LLM.Provider == ProviderDeepSeek {
		return "DEEPSEEK_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func (c *Config) LLMAPIKey() string {
	if c.LLM.Provider == ProviderDeepSeek {
		return c.LLM.DeepSeekAPIKey
	}
	return c.LLM.OpenAIAPIKey
}

func (c *Config) LLMModel() string {
	if c.LLM.Provider == ProviderDeepSeek {
		return c.LLM.DeepSeekModel
	}
	return c.LLM.OpenAIModel
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) MarketDataTimeout() time.Duration {
	return time.Duration(c.MarketData.TimeoutSeconds) * time.Second
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Redacted returns a copy safe to print, with secrets masked.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.LLM.OpenAIAPIKey = mask(c.LLM.OpenAIAPIKey)
	cp.LLM.DeepSeekAPIKey = mask(c.LLM.DeepSeekAPIKey)
	cp.MarketData.FinnhubAPIKey = mask(c.MarketData.FinnhubAPIKey)
	return &cp
}

// TOML renders the configuration in the same format Load reads.
func (c *Config) TOML() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 4:
		return "****"
	default:
		return secret[:4] + "****"
	}
}
