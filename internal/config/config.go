package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Structurer StructurerConfig `yaml:"structurer"`
	Render     RenderConfig     `yaml:"render"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`
}

type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// GatewayConfig configures the extraction model call. Calls are single-attempt.
type GatewayConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	RatePerMin  int           `yaml:"rate_per_minute"`
}

type StructurerConfig struct {
	DateLayouts   []string `yaml:"date_layouts"`
	PresentTokens []string `yaml:"present_tokens"`
}

type RenderConfig struct {
	Formats    []string `yaml:"formats"`
	PageWidth  float64  `yaml:"page_width"`
	PageHeight float64  `yaml:"page_height"`
	Margin     float64  `yaml:"margin"`
	ChromePath string   `yaml:"chrome_path"`
}

type StorageConfig struct {
	UploadPath    string        `yaml:"upload_path"`
	OutputPath    string        `yaml:"output_path"`
	MaxFileSize   int64         `yaml:"max_file_size"`
	// Retention is how long uploads and renderings are kept. Zero keeps them.
	Retention     time.Duration `yaml:"retention"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

var (
	supportedProviders = map[string]bool{"gemini": true, "claude": true}
	envVarPattern      = regexp.MustCompile(`\$\{([^}]+)\}`)
)

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	cfg := Default()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3000",
			Env:  EnvDevelopment,
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			Port:   "5432",
			User:   "postgres",
			DBName: "resume_structurer",
		},
		Gateway: GatewayConfig{
			Provider:    "gemini",
			Model:       "gemini-2.5-flash",
			Timeout:     30 * time.Second,
			Temperature: 0.1,
			MaxTokens:   8192,
			RatePerMin:  60,
		},
		Structurer: StructurerConfig{
			DateLayouts: []string{
				"2006-01-02", "2006-01", "2006",
				"01/02/2006", "02.01.2006", "01/2006", "2006/01",
				"Jan 2006", "January 2006", "Jan. 2006",
				"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
			},
			PresentTokens: []string{"present", "current", "now", "ongoing", "to date"},
		},
		Render: RenderConfig{
			Formats:    []string{"pdf", "docx", "html"},
			PageWidth:  612,
			PageHeight: 792,
			Margin:     36,
		},
		Storage: StorageConfig{
			UploadPath:    "./uploads",
			OutputPath:    "./outputs",
			MaxFileSize:   16 << 20,
			Retention:     24 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})

	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Env = getEnv("ENV", c.Server.Env)

	c.Database.Enabled = getEnvAsBool("DB_ENABLED", c.Database.Enabled)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)

	c.Gateway.Provider = getEnv("GATEWAY_PROVIDER", c.Gateway.Provider)
	c.Gateway.Model = getEnv("GATEWAY_MODEL", c.Gateway.Model)
	c.Gateway.Timeout = getEnvAsDuration("GATEWAY_TIMEOUT", c.Gateway.Timeout)
	c.Gateway.RatePerMin = getEnvAsInt("GATEWAY_RATE_PER_MINUTE", c.Gateway.RatePerMin)
	c.Gateway.MaxTokens = getEnvAsInt("GATEWAY_MAX_TOKENS", c.Gateway.MaxTokens)
	switch c.Gateway.Provider {
	case "claude":
		c.Gateway.APIKey = getEnv("ANTHROPIC_API_KEY", c.Gateway.APIKey)
	default:
		c.Gateway.APIKey = getEnv("GEMINI_API_KEY", c.Gateway.APIKey)
	}

	c.Structurer.DateLayouts = getEnvAsList("DATE_LAYOUTS", c.Structurer.DateLayouts)
	c.Structurer.PresentTokens = getEnvAsList("PRESENT_TOKENS", c.Structurer.PresentTokens)

	c.Render.Formats = getEnvAsList("OUTPUT_FORMATS", c.Render.Formats)
	c.Render.ChromePath = getEnv("CHROME_PATH", c.Render.ChromePath)

	c.Storage.UploadPath = getEnv("UPLOAD_PATH", c.Storage.UploadPath)
	c.Storage.OutputPath = getEnv("OUTPUT_PATH", c.Storage.OutputPath)
	c.Storage.MaxFileSize = getEnvAsInt64("MAX_FILE_SIZE", c.Storage.MaxFileSize)
	c.Storage.Retention = getEnvAsDuration("STORAGE_RETENTION", c.Storage.Retention)
	c.Storage.SweepInterval = getEnvAsDuration("STORAGE_SWEEP_INTERVAL", c.Storage.SweepInterval)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate checks the values the rest of the program relies on. Output
// formats are checked against the renderer registry at wiring time.
func (c *Config) Validate() error {
	switch c.Server.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("invalid ENV %q", c.Server.Env)
	}
	if !supportedProviders[c.Gateway.Provider] {
		return fmt.Errorf("unsupported gateway provider %q", c.Gateway.Provider)
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive, got %s", c.Gateway.Timeout)
	}
	if len(c.Render.Formats) == 0 {
		return fmt.Errorf("at least one output format must be enabled")
	}
	if len(c.Structurer.DateLayouts) == 0 {
		return fmt.Errorf("at least one date layout is required")
	}
	if c.Render.PageHeight <= 2*c.Render.Margin || c.Render.PageWidth <= 2*c.Render.Margin {
		return fmt.Errorf("page margins leave no content area")
	}
	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive")
	}
	if c.Storage.Retention > 0 && c.Storage.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive when retention is set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == EnvProduction
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}

// getEnvAsList splits on "|" when present, otherwise on commas.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	sep := ","
	if strings.Contains(valueStr, "|") {
		sep = "|"
	}
	var out []string
	for _, part := range strings.Split(valueStr, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
