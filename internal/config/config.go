package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Blob    BlobConfig    `yaml:"blob" mapstructure:"blob"`
	OCR     OCRConfig     `yaml:"ocr" mapstructure:"ocr"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the submission database.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// BlobConfig configures where incoming documents are read from.
type BlobConfig struct {
	Provider            string `yaml:"provider" mapstructure:"provider"`
	Root                string `yaml:"root" mapstructure:"root"`
	Bucket              string `yaml:"bucket" mapstructure:"bucket"`
	Endpoint            string `yaml:"endpoint" mapstructure:"endpoint"`
	MailContainer       string `yaml:"mail_container" mapstructure:"mail_container"`
	AttachmentContainer string `yaml:"attachment_container" mapstructure:"attachment_container"`
	MaxBytes            int64  `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_model" mapstructure:"mistral_model"`
}

// ExtractConfig tunes the extraction pipelines.
type ExtractConfig struct {
	EmailFallbackThreshold int  `yaml:"email_fallback_threshold" mapstructure:"email_fallback_threshold"`
	PDFFallbackThreshold   int  `yaml:"pdf_fallback_threshold" mapstructure:"pdf_fallback_threshold"`
	Heuristics             bool `yaml:"heuristics" mapstructure:"heuristics"`
}

// BatchConfig configures directory ingestion.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP trigger server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Keys without a default are invisible to AutomaticEnv on
	// Unmarshal, so secrets get an empty one.
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 0)
	v.SetDefault("blob.provider", "local")
	v.SetDefault("blob.root", "./data")
	v.SetDefault("blob.bucket", "")
	v.SetDefault("blob.endpoint", "")
	v.SetDefault("blob.mail_container", "mailbody")
	v.SetDefault("blob.attachment_container", "attachments")
	v.SetDefault("blob.max_bytes", 32<<20)
	v.SetDefault("ocr.provider", "native")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.mistral_api_key", "")
	v.SetDefault("ocr.mistral_model", "mistral-ocr-latest")
	v.SetDefault("extract.email_fallback_threshold", 10)
	v.SetDefault("extract.pdf_fallback_threshold", 15)
	v.SetDefault("extract.heuristics", true)
	v.SetDefault("batch.max_concurrent", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Mode is one of
// "serve", "ingest", "batch" or "store" (store-only commands such as
// migrate, list and export).
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve", "ingest", "batch", "store":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "postgres", "sqlite":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		errs = append(errs, "store.driver must be postgres or sqlite")
	}

	if mode != "store" {
		switch c.Blob.Provider {
		case "local", "":
		case "gcs":
			if c.Blob.Bucket == "" {
				errs = append(errs, "blob.bucket is required for the gcs provider")
			}
		default:
			errs = append(errs, "blob.provider must be local or gcs")
		}
		if c.Extract.EmailFallbackThreshold < 0 || c.Extract.PDFFallbackThreshold < 0 {
			errs = append(errs, "extract fallback thresholds must be >= 0")
		}
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
			errs = append(errs, "server.rate_limit and server.rate_burst must be >= 0")
		}
	case "batch":
		if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 50 {
			errs = append(errs, "batch.max_concurrent must be between 1 and 50")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
