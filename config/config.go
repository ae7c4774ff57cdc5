package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aura-webinar/meeting-transcriber/internal/prompts"
)

// Storage backends.
const (
	StorageAzure = "azure"
	StorageS3    = "s3"
)

// Report providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config holds application configuration loaded once at startup.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Azure    AzureConfig    `yaml:"azure"`
	AWS      AWSConfig      `yaml:"aws"`
	Speech   SpeechConfig   `yaml:"speech"`
	Report   ReportConfig   `yaml:"report"`
	Email    EmailConfig    `yaml:"email"`
	Redis    RedisConfig    `yaml:"redis"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// ServerConfig holds HTTP server settings.
// Read and write timeouts cover the whole upload body; 0 leaves them unbounded
// so long recordings on slow links are not cut off.
type ServerConfig struct {
	Port               string `yaml:"port"`
	ReadHeaderTimeout  int    `yaml:"read_header_timeout_sec"`
	ReadTimeout        int    `yaml:"read_timeout_sec"`
	WriteTimeout       int    `yaml:"write_timeout_sec"`
	ShutdownGrace      int    `yaml:"shutdown_grace_sec"`
	CORSAllowedOrigins string `yaml:"cors_allowed_origins"` // comma-separated, or "*" for all
	StaticDir          string `yaml:"static_dir"`
}

// StorageConfig selects where uploaded audio is staged.
type StorageConfig struct {
	Backend string `yaml:"backend"` // azure or s3
}

// AzureConfig holds the Blob Storage account used for SAS-signed uploads.
type AzureConfig struct {
	Account    string `yaml:"account"`
	Key        string `yaml:"key"` // base64 account key
	Container  string `yaml:"container"`
	Endpoint   string `yaml:"endpoint"` // empty = https://{account}.blob.core.windows.net
	SASVersion string `yaml:"sas_version"`
}

// AWSConfig holds AWS credentials and the S3 bucket for audio (STORAGE_BACKEND=s3).
type AWSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	AudioBucket     string `yaml:"audio_bucket"`
}

// SpeechConfig holds the batch transcription service settings.
type SpeechConfig struct {
	Key      string `yaml:"key"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"` // empty = derived from region
	Locale   string `yaml:"locale"`
}

// ReportConfig holds the generative model settings.
type ReportConfig struct {
	Provider         string `yaml:"provider"`
	AnthropicKey     string `yaml:"anthropic_api_key"`
	AnthropicModel   string `yaml:"anthropic_model"`
	AnthropicBaseURL string `yaml:"anthropic_base_url"`
	MaxTokens        int    `yaml:"max_tokens"`
	GeminiKey        string `yaml:"gemini_api_key"`
	GeminiModel      string `yaml:"gemini_model"`
}

// EmailConfig for the transactional email API.
type EmailConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
}

// RedisConfig holds Redis connection settings. Empty Addr disables stage events.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// PipelineConfig holds orchestration pacing and submission defaults.
type PipelineConfig struct {
	PollInterval         time.Duration `yaml:"poll_interval"`
	MaxTranscriptionWait time.Duration `yaml:"max_transcription_wait"`
	HTTPTimeout          time.Duration `yaml:"http_timeout"`
	DefaultDocumentType  string        `yaml:"default_document_type"`
	DefaultSubject       string        `yaml:"default_subject"`
}

// SpeechEndpoint returns the transcription API base URL.
func (c SpeechConfig) SpeechEndpoint() string {
	if c.Endpoint != "" {
		return strings.TrimRight(c.Endpoint, "/")
	}
	return fmt.Sprintf("https://%s.api.cognitive.microsoft.com/speechtotext/v3.2", c.Region)
}

// BlobEndpoint returns the Blob Storage account URL.
func (c AzureConfig) BlobEndpoint() string {
	if c.Endpoint != "" {
		return strings.TrimRight(c.Endpoint, "/")
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net", c.Account)
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:               "8080",
			ReadHeaderTimeout:  10,
			ShutdownGrace:      15,
			CORSAllowedOrigins: "*",
			StaticDir:          "./public",
		},
		Storage: StorageConfig{Backend: StorageAzure},
		Azure: AzureConfig{
			Container:  "audio-uploads",
			SASVersion: "2020-02-10",
		},
		AWS: AWSConfig{
			Region:      "eu-west-3",
			AudioBucket: "audio-uploads",
		},
		Speech: SpeechConfig{
			Region: "francecentral",
			Locale: "fr-FR",
		},
		Report: ReportConfig{
			Provider:         ProviderAnthropic,
			AnthropicModel:   "claude-sonnet-4-20250514",
			AnthropicBaseURL: "https://api.anthropic.com",
			MaxTokens:        4096,
			GeminiModel:      "gemini-2.5-flash",
		},
		Email: EmailConfig{
			BaseURL:     "https://api.brevo.com",
			FromAddress: "noreply@devomcloud.fr",
			FromName:    "Tribe Azure - Meeting Transcriber",
		},
		Pipeline: PipelineConfig{
			PollInterval:         5 * time.Second,
			MaxTranscriptionWait: 2 * time.Hour,
			HTTPTimeout:          10 * time.Minute,
			DefaultDocumentType:  "confcall",
			DefaultSubject:       "Compte-rendu de réunion",
		},
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and the
// environment, with optional .env file. Environment values win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.ReadHeaderTimeout = getEnvInt("READ_HEADER_TIMEOUT_SEC", cfg.Server.ReadHeaderTimeout)
	cfg.Server.ReadTimeout = getEnvInt("READ_TIMEOUT_SEC", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvInt("WRITE_TIMEOUT_SEC", cfg.Server.WriteTimeout)
	cfg.Server.ShutdownGrace = getEnvInt("SHUTDOWN_GRACE_SEC", cfg.Server.ShutdownGrace)
	cfg.Server.CORSAllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.Server.CORSAllowedOrigins)
	cfg.Server.StaticDir = getEnv("STATIC_DIR", cfg.Server.StaticDir)

	cfg.Storage.Backend = strings.ToLower(getEnv("STORAGE_BACKEND", cfg.Storage.Backend))

	cfg.Azure.Account = getEnv("AZURE_STORAGE_ACCOUNT", cfg.Azure.Account)
	cfg.Azure.Key = getEnv("AZURE_STORAGE_KEY", cfg.Azure.Key)
	cfg.Azure.Container = getEnv("AZURE_STORAGE_CONTAINER", cfg.Azure.Container)
	cfg.Azure.Endpoint = getEnv("AZURE_STORAGE_ENDPOINT", cfg.Azure.Endpoint)
	cfg.Azure.SASVersion = getEnv("AZURE_SAS_VERSION", cfg.Azure.SASVersion)

	cfg.AWS.Region = getEnv("AWS_REGION", cfg.AWS.Region)
	cfg.AWS.AccessKeyID = getEnv("AWS_ACCESS_KEY_ID", cfg.AWS.AccessKeyID)
	cfg.AWS.SecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", cfg.AWS.SecretAccessKey)
	cfg.AWS.AudioBucket = getEnv("AWS_S3_AUDIO_BUCKET", cfg.AWS.AudioBucket)

	cfg.Speech.Key = getEnv("AZURE_SPEECH_KEY", cfg.Speech.Key)
	cfg.Speech.Region = getEnv("AZURE_SPEECH_REGION", cfg.Speech.Region)
	cfg.Speech.Endpoint = getEnv("AZURE_SPEECH_ENDPOINT", cfg.Speech.Endpoint)
	cfg.Speech.Locale = getEnv("SPEECH_LOCALE", cfg.Speech.Locale)

	cfg.Report.Provider = strings.ToLower(getEnv("REPORT_PROVIDER", cfg.Report.Provider))
	cfg.Report.AnthropicKey = getEnv("ANTHROPIC_API_KEY", cfg.Report.AnthropicKey)
	cfg.Report.AnthropicModel = getEnv("ANTHROPIC_MODEL", cfg.Report.AnthropicModel)
	cfg.Report.AnthropicBaseURL = getEnv("ANTHROPIC_BASE_URL", cfg.Report.AnthropicBaseURL)
	cfg.Report.MaxTokens = getEnvInt("REPORT_MAX_TOKENS", cfg.Report.MaxTokens)
	cfg.Report.GeminiKey = getEnv("GEMINI_API_KEY", cfg.Report.GeminiKey)
	cfg.Report.GeminiModel = getEnv("GEMINI_MODEL", cfg.Report.GeminiModel)

	cfg.Email.APIKey = getEnv("BREVO_API_KEY", cfg.Email.APIKey)
	cfg.Email.BaseURL = getEnv("BREVO_BASE_URL", cfg.Email.BaseURL)
	cfg.Email.FromAddress = getEnv("EMAIL_FROM", cfg.Email.FromAddress)
	cfg.Email.FromName = getEnv("EMAIL_FROM_NAME", cfg.Email.FromName)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Pipeline.PollInterval = getEnvSeconds("POLL_INTERVAL_SEC", cfg.Pipeline.PollInterval)
	cfg.Pipeline.MaxTranscriptionWait = getEnvMinutes("TRANSCRIPTION_MAX_WAIT_MIN", cfg.Pipeline.MaxTranscriptionWait)
	cfg.Pipeline.HTTPTimeout = getEnvSeconds("HTTP_TIMEOUT_SEC", cfg.Pipeline.HTTPTimeout)
	cfg.Pipeline.DefaultDocumentType = getEnv("DEFAULT_DOCUMENT_TYPE", cfg.Pipeline.DefaultDocumentType)
	cfg.Pipeline.DefaultSubject = getEnv("DEFAULT_SUBJECT", cfg.Pipeline.DefaultSubject)
}

// Validate checks enumerations and pacing values. Secrets are not checked:
// a missing key surfaces as an authorization failure on first use.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageAzure, StorageS3:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", StorageAzure, StorageS3, c.Storage.Backend)
	}
	switch c.Report.Provider {
	case ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("report.provider must be %q or %q, got %q", ProviderAnthropic, ProviderGemini, c.Report.Provider)
	}
	if c.Pipeline.PollInterval <= 0 {
		return fmt.Errorf("pipeline.poll_interval must be positive")
	}
	if c.Pipeline.MaxTranscriptionWait < c.Pipeline.PollInterval {
		return fmt.Errorf("pipeline.max_transcription_wait must be at least one poll interval")
	}
	if dt := c.Pipeline.DefaultDocumentType; dt != "" {
		if _, ok := prompts.Parse(dt); !ok {
			return fmt.Errorf("pipeline.default_document_type %q is not a known document type", dt)
		}
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ReadHeaderTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if c.Report.MaxTokens <= 0 {
		return fmt.Errorf("report.max_tokens must be positive")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

func getEnvMinutes(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Minute
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
