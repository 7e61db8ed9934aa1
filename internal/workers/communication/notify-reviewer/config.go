// internal/workers/communication/notify-reviewer/config.go
package notifyreviewer

import "time"

type Config struct {
	Timeout      time.Duration
	AWSRegion    string
	FromEmail    string
	EmailEnabled bool
	SMSEnabled   bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		AWSRegion:    "us-east-1",
		FromEmail:    "noreply@proposals.example.com",
		EmailEnabled: true,
		SMSEnabled:   true,
	}
}
