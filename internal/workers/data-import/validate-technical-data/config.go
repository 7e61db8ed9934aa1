// internal/workers/data-import/validate-technical-data/config.go
package validatetechnicaldata

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
