package config

import (
	"testing"
	"time"
)

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("BRANDPULSE_API_URL", "")
	t.Setenv("POLL_INTERVAL", "")
	t.Setenv("POLL_MAX_ATTEMPTS", "")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("APIURL = %q; want %q", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.PollInterval != DefaultPollInterval || cfg.MaxPollAttempts != DefaultMaxPollAttempts {
		t.Fatalf("poll settings = %s x %d; want %s x %d",
			cfg.PollInterval, cfg.MaxPollAttempts, DefaultPollInterval, DefaultMaxPollAttempts)
	}
}

func TestLoadClientFromEnv(t *testing.T) {
	t.Setenv("BRANDPULSE_API_URL", "http://analysis.internal:8080/ ")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("POLL_MAX_ATTEMPTS", "5")

	cfg, err := LoadClient()
	if err != nil {
		t.Fatalf("LoadClient error: %v", err)
	}
	if cfg.APIURL != "http://analysis.internal:8080" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("PollInterval = %s", cfg.PollInterval)
	}
	if cfg.MaxPollAttempts != 5 {
		t.Fatalf("MaxPollAttempts = %d", cfg.MaxPollAttempts)
	}
}

func TestLoadClientRejectsBadInterval(t *testing.T) {
	t.Setenv("BRANDPULSE_API_URL", "http://localhost:5000")
	t.Setenv("POLL_INTERVAL", "0s")

	if _, err := LoadClient(); err == nil {
		t.Fatalf("expected error for zero poll interval")
	}
}

func TestLoadServerRequiresRedis(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	if _, err := LoadServer(); err == nil {
		t.Fatalf("expected error when REDIS_URL is missing")
	}
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("S3_BUCKET", "results")
	t.Setenv("S3_PREFIX", "/brandpulse/")
	t.Setenv("KAFKA_BOOTSTRAP_SERVERS", "kafka-1:9092, kafka-2:9092,")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer error: %v", err)
	}
	if cfg.WorkerCount != 4 {
		t.Fatalf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.QueueName != DefaultQueueName {
		t.Fatalf("QueueName = %q", cfg.QueueName)
	}
	if !cfg.ArchiveEnabled() || cfg.S3Prefix != "brandpulse/" {
		t.Fatalf("unexpected archive settings: bucket=%q prefix=%q", cfg.S3Bucket, cfg.S3Prefix)
	}
	if !cfg.KafkaEnabled() || len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
}
