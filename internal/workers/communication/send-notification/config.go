// internal/workers/communication/send-notification/config.go
package sendnotification

import (
	"time"

	"insertion-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	Timeout      time.Duration
}

func LoadConfig(wc config.WorkerConfig, nc config.NotificationConfig) *Config {
	timeout := 30 * time.Second
	if wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{
		EmailEnabled: nc.Email.Enabled,
		SMSEnabled:   nc.SMS.Enabled,
		Timeout:      timeout,
	}
}
