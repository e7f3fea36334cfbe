// Package config loads server settings from NOBEL_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/alfredjeanlab/nobel/internal/ratelimit"
	"github.com/alfredjeanlab/nobel/internal/seed"
)

type Config struct {
	HTTPAddr        string // NOBEL_HTTP_ADDR (default ":8001")
	GRPCAddr        string // NOBEL_GRPC_ADDR (default ":9001"; empty = no gRPC health port)
	DataFile        string // NOBEL_DATA_FILE (default "nobel_prizes.json")
	SeedURL         string // NOBEL_SEED_URL (default Nobel API v1 prize.json)
	CredentialsFile string // NOBEL_CREDENTIALS_FILE (optional, empty = built-in accounts)
	NATSURL         string // NOBEL_NATS_URL (optional, empty = no events)
	DatabaseURL     string // NOBEL_DATABASE_URL (optional, empty = no mutation journal)

	// RateLimits maps tier name to budget. Each tier can be overridden with
	// NOBEL_RATE_LIMIT_<TIER>, e.g. NOBEL_RATE_LIMIT_STRICT=5/minute.
	RateLimits map[string]ratelimit.Tier

	// Sync settings
	SyncInterval   time.Duration // NOBEL_SYNC_INTERVAL (default 0 = disabled)
	SyncS3Bucket   string        // NOBEL_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // NOBEL_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // NOBEL_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // NOBEL_SYNC_S3_KEY (default "nobel/prizes.jsonl")
	SyncGitRepo    string        // NOBEL_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // NOBEL_SYNC_GIT_FILE (default "prizes.jsonl")
	SyncGitBranch  string        // NOBEL_SYNC_GIT_BRANCH (default "main")
}

// rateLimitEnv maps each tier to its override variable.
var rateLimitEnv = map[string]string{
	ratelimit.TierDefault: "NOBEL_RATE_LIMIT_DEFAULT",
	ratelimit.TierAdmin:   "NOBEL_RATE_LIMIT_ADMIN",
	ratelimit.TierUser:    "NOBEL_RATE_LIMIT_USER",
	ratelimit.TierStrict:  "NOBEL_RATE_LIMIT_STRICT",
}

func Load() (*Config, error) {
	c := &Config{
		HTTPAddr:        envOrDefault("NOBEL_HTTP_ADDR", ":8001"),
		GRPCAddr:        envOrDefault("NOBEL_GRPC_ADDR", ":9001"),
		DataFile:        envOrDefault("NOBEL_DATA_FILE", "nobel_prizes.json"),
		SeedURL:         envOrDefault("NOBEL_SEED_URL", seed.DefaultURL),
		CredentialsFile: os.Getenv("NOBEL_CREDENTIALS_FILE"),
		NATSURL:         os.Getenv("NOBEL_NATS_URL"),
		DatabaseURL:     os.Getenv("NOBEL_DATABASE_URL"),
		RateLimits:      ratelimit.DefaultTiers(),
		SyncS3Bucket:    os.Getenv("NOBEL_SYNC_S3_BUCKET"),
		SyncS3Endpoint:  os.Getenv("NOBEL_SYNC_S3_ENDPOINT"),
		SyncS3Region:    envOrDefault("NOBEL_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:       envOrDefault("NOBEL_SYNC_S3_KEY", "nobel/prizes.jsonl"),
		SyncGitRepo:     os.Getenv("NOBEL_SYNC_GIT_REPO"),
		SyncGitFile:     envOrDefault("NOBEL_SYNC_GIT_FILE", "prizes.jsonl"),
		SyncGitBranch:   envOrDefault("NOBEL_SYNC_GIT_BRANCH", "main"),
	}

	for tier, key := range rateLimitEnv {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		t, err := ratelimit.ParseTier(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		c.RateLimits[tier] = t
	}

	if s := os.Getenv("NOBEL_SYNC_INTERVAL"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("NOBEL_SYNC_INTERVAL: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("NOBEL_SYNC_INTERVAL: must not be negative")
		}
		c.SyncInterval = d
	}

	return c, nil
}

// SyncEnabled reports whether periodic export should run.
func (c *Config) SyncEnabled() bool {
	return c.SyncInterval > 0 && (c.SyncS3Bucket != "" || c.SyncGitRepo != "")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
