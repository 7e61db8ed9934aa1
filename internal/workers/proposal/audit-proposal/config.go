// internal/workers/proposal/audit-proposal/config.go
package auditproposal

import "time"

type Config struct {
	Timeout        time.Duration
	MaxProvenCases int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        30 * time.Second,
		MaxProvenCases: 5,
	}
}
