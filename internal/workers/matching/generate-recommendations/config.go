// internal/workers/matching/generate-recommendations/config.go
package generaterecommendations

import (
	"time"

	"partner-match-workers/internal/matching"
)

type Config struct {
	Timeout        time.Duration
	CacheTTL       time.Duration
	MaxCatalogSize int
	SlowRankingMs  int64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		CacheTTL:       5 * time.Minute,
		MaxCatalogSize: matching.DefaultMaxCatalogSize,
		SlowRankingMs:  500,
	}
}
