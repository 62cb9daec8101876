// internal/workers/pipeline/list-pipeline-board/config.go
package listpipelineboard

import (
	"time"

	"insertion-workers/internal/common/config"
)

type Config struct {
	Timeout     time.Duration
	Concurrency int
}

func LoadConfig(wc config.WorkerConfig, ec config.EligibilityConfig) *Config {
	timeout := 30 * time.Second
	if wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{Timeout: timeout, Concurrency: ec.BatchConcurrency}
}
