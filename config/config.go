package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ClientConfig configures the form client and the headless analyze command
type ClientConfig struct {
	APIURL          string
	PollInterval    time.Duration
	MaxPollAttempts int
	HTTPTimeout     time.Duration
	LogLevel        string
	LogFormat       string
	LogFile         string
}

// ServerConfig configures the reference analysis service
type ServerConfig struct {
	Port        string
	RedisURL    string
	QueueName   string
	WorkerCount int
	JobTTL      time.Duration
	CacheTTL    time.Duration

	CohereAPIKey  string
	CohereModel   string
	CohereBaseURL string

	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	KafkaBrokers       []string
	KafkaEventsTopic   string
	KafkaRequestsTopic string
	KafkaGroupID       string

	LogLevel  string
	LogFormat string
}

// LoadClient reads client settings from the environment (and .env when present)
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("BRANDPULSE_API_URL", DefaultAPIURL)
	v.SetDefault("POLL_INTERVAL", DefaultPollInterval)
	v.SetDefault("POLL_MAX_ATTEMPTS", DefaultMaxPollAttempts)
	v.SetDefault("HTTP_TIMEOUT", DefaultHTTPTimeout)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.AutomaticEnv()

	cfg := &ClientConfig{
		APIURL:          strings.TrimRight(strings.TrimSpace(v.GetString("BRANDPULSE_API_URL")), "/"),
		PollInterval:    v.GetDuration("POLL_INTERVAL"),
		MaxPollAttempts: v.GetInt("POLL_MAX_ATTEMPTS"),
		HTTPTimeout:     v.GetDuration("HTTP_TIMEOUT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		LogFile:         v.GetString("LOG_FILE"),
	}

	if cfg.APIURL == "" {
		return nil, fmt.Errorf("BRANDPULSE_API_URL must not be empty")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	if cfg.MaxPollAttempts < 0 {
		return nil, fmt.Errorf("POLL_MAX_ATTEMPTS must not be negative, got %d", cfg.MaxPollAttempts)
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}

	return cfg, nil
}

// LoadServer reads service settings from the environment (and .env when present).
// REDIS_URL is required.
func LoadServer() (*ServerConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("QUEUE_NAME", DefaultQueueName)
	v.SetDefault("WORKER_COUNT", DefaultWorkerCount)
	v.SetDefault("JOB_TTL", DefaultJobTTL)
	v.SetDefault("CACHE_TTL", DefaultCacheTTL)
	v.SetDefault("COHERE_MODEL", DefaultCohereModel)
	v.SetDefault("KAFKA_TOPIC_EVENTS", DefaultEventsTopic)
	v.SetDefault("KAFKA_TOPIC_REQUESTS", DefaultRequestsTopic)
	v.SetDefault("KAFKA_CONSUMER_GROUP_ID", DefaultConsumerGroup)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.AutomaticEnv()

	cfg := &ServerConfig{
		Port:               strings.TrimSpace(v.GetString("PORT")),
		RedisURL:           strings.TrimSpace(v.GetString("REDIS_URL")),
		QueueName:          strings.TrimSpace(v.GetString("QUEUE_NAME")),
		WorkerCount:        v.GetInt("WORKER_COUNT"),
		JobTTL:             v.GetDuration("JOB_TTL"),
		CacheTTL:           v.GetDuration("CACHE_TTL"),
		CohereAPIKey:       strings.TrimSpace(v.GetString("COHERE_API_KEY")),
		CohereModel:        strings.TrimSpace(v.GetString("COHERE_MODEL")),
		CohereBaseURL:      strings.TrimSpace(v.GetString("COHERE_BASE_URL")),
		S3Bucket:           strings.TrimSpace(v.GetString("S3_BUCKET")),
		S3Region:           strings.TrimSpace(v.GetString("S3_REGION")),
		S3Profile:          strings.TrimSpace(v.GetString("S3_PROFILE")),
		S3Prefix:           normalizePrefix(v.GetString("S3_PREFIX")),
		S3UsePathStyle:     v.GetBool("S3_USE_PATH_STYLE"),
		KafkaBrokers:       splitList(v.GetString("KAFKA_BOOTSTRAP_SERVERS")),
		KafkaEventsTopic:   strings.TrimSpace(v.GetString("KAFKA_TOPIC_EVENTS")),
		KafkaRequestsTopic: strings.TrimSpace(v.GetString("KAFKA_TOPIC_REQUESTS")),
		KafkaGroupID:       strings.TrimSpace(v.GetString("KAFKA_CONSUMER_GROUP_ID")),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL environment variable is required")
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultQueueName
	}

	return cfg, nil
}

// KafkaEnabled reports whether Kafka brokers were configured
func (c *ServerConfig) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ArchiveEnabled reports whether completed results should be copied to S3
func (c *ServerConfig) ArchiveEnabled() bool {
	return c.S3Bucket != ""
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
