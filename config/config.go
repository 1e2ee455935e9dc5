package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
		// MaxRequestBodySize accepts formats like "100KB", "1MB".
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access string `json:"access" yaml:"access"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// Ingestion configuration for the review ingestion stage
	Ingestion *IngestionConfig `json:"ingestion" yaml:"ingestion"`

	// Platforms holds the credentials for the external review platforms
	Platforms *PlatformsConfig `json:"platforms" yaml:"platforms"`

	// SMTP configuration for notification email delivery
	SMTP *SMTPConfig `json:"smtp" yaml:"smtp"`

	// PubSub configuration for event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Scheduler configuration for the cron runner
	Scheduler *SchedulerConfig `json:"scheduler" yaml:"scheduler"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost     int           `json:"bcryptCost" yaml:"bcryptCost"`
	AccessTokenTTL time.Duration `json:"accessTokenTtl" yaml:"accessTokenTtl"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// IngestionConfig defines configuration for the review ingestion stage
type IngestionConfig struct {
	// Minimum age of the last successful fetch before a listing is fetched again
	RefreshInterval time.Duration `json:"refreshInterval" yaml:"refreshInterval"`

	// Upper bound on a single platform fetch call
	FetchTimeout time.Duration `json:"fetchTimeout" yaml:"fetchTimeout"`
}

// PlatformsConfig holds per-platform client credentials. A platform with
// empty credentials is disabled.
type PlatformsConfig struct {
	Google struct {
		APIKey string `json:"apiKey" yaml:"apiKey"`
	} `json:"google" yaml:"google"`
	Yelp struct {
		APIKey string `json:"apiKey" yaml:"apiKey"`
	} `json:"yelp" yaml:"yelp"`
	Facebook struct {
		AccessToken string `json:"accessToken" yaml:"accessToken"`
	} `json:"facebook" yaml:"facebook"`
	TripAdvisor struct {
		APIKey string `json:"apiKey" yaml:"apiKey"`
	} `json:"tripadvisor" yaml:"tripadvisor"`
}

// SMTPConfig defines the email delivery endpoint
type SMTPConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	From     string `json:"from" yaml:"from"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// SchedulerConfig defines the cron specs driving the pipeline
type SchedulerConfig struct {
	// Cron spec for the ingestion sweep over monitored listings
	IngestSpec string `json:"ingestSpec" yaml:"ingestSpec"`

	// Cron spec for dispatching due notification records
	DispatchSpec string `json:"dispatchSpec" yaml:"dispatchSpec"`

	// Cron spec for weekly summary generation
	WeeklySpec string `json:"weeklySpec" yaml:"weeklySpec"`

	// Cron spec for monthly report generation
	MonthlySpec string `json:"monthlySpec" yaml:"monthlySpec"`

	// Maximum ingestion attempts per listing per sweep, transient failures only
	IngestMaxAttempts int `json:"ingestMaxAttempts" yaml:"ingestMaxAttempts"`

	// Base delay for exponential backoff between ingestion attempts
	IngestBackoff time.Duration `json:"ingestBackoff" yaml:"ingestBackoff"`

	// Batch size for each dispatch pass
	DispatchBatchSize int `json:"dispatchBatchSize" yaml:"dispatchBatchSize"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	cfg.Postgres.Replicas = buildReplicasFromEnv()

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills in the pipeline settings a deployment rarely overrides.
func applyDefaults(cfg *Config) {
	if cfg.Ingestion == nil {
		cfg.Ingestion = &IngestionConfig{}
	}
	if cfg.Ingestion.RefreshInterval <= 0 {
		cfg.Ingestion.RefreshInterval = 24 * time.Hour
	}
	if cfg.Ingestion.FetchTimeout <= 0 {
		cfg.Ingestion.FetchTimeout = 30 * time.Second
	}

	if cfg.Scheduler == nil {
		cfg.Scheduler = &SchedulerConfig{}
	}
	if cfg.Scheduler.IngestSpec == "" {
		cfg.Scheduler.IngestSpec = "0 * * * *" // hourly sweep; listings still honor RefreshInterval
	}
	if cfg.Scheduler.DispatchSpec == "" {
		cfg.Scheduler.DispatchSpec = "* * * * *"
	}
	if cfg.Scheduler.WeeklySpec == "" {
		cfg.Scheduler.WeeklySpec = "0 9 * * MON"
	}
	if cfg.Scheduler.MonthlySpec == "" {
		cfg.Scheduler.MonthlySpec = "0 9 1 * *"
	}
	if cfg.Scheduler.IngestMaxAttempts <= 0 {
		cfg.Scheduler.IngestMaxAttempts = 3
	}
	if cfg.Scheduler.IngestBackoff <= 0 {
		cfg.Scheduler.IngestBackoff = 2 * time.Second
	}
	if cfg.Scheduler.DispatchBatchSize <= 0 {
		cfg.Scheduler.DispatchBatchSize = 100
	}

	if cfg.Platforms == nil {
		cfg.Platforms = &PlatformsConfig{}
	}
	if cfg.SMTP == nil {
		cfg.SMTP = &SMTPConfig{}
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.AccessTokenTTL <= 0 {
		cfg.Auth.AccessTokenTTL = 15 * time.Minute
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
