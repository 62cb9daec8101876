// internal/workers/candidates/update-candidate-record/config.go
package updatecandidaterecord

import (
	"time"

	"insertion-workers/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	CandidateIndex string
}

func LoadConfig(wc config.WorkerConfig, ec config.EligibilityConfig) *Config {
	timeout := 10 * time.Second
	if wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{Timeout: timeout, CandidateIndex: ec.CandidateIndex}
}
