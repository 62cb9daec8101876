// internal/workers/candidates/validate-candidate-data/config.go
package validatecandidatedata

import (
	"time"

	"insertion-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wc config.WorkerConfig) *Config {
	timeout := 5 * time.Second
	if wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{Timeout: timeout}
}
