// internal/workers/data-access/query-elasticsearch/config.go
package queryelasticsearch

import (
	"time"

	"insertion-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	DefaultIndex string
}

func LoadConfig(wc config.WorkerConfig, ec config.EligibilityConfig) *Config {
	timeout := 30 * time.Second
	if wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{Timeout: timeout, DefaultIndex: ec.CandidateIndex}
}
