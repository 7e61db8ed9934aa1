// internal/workers/data-import/analyze-import/config.go
package analyzeimport

import "time"

type Config struct {
	Timeout    time.Duration
	PreviewTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    30 * time.Second,
		PreviewTTL: time.Hour,
	}
}
