// internal/reference/reference.go
package reference

import (
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"

	"insertion-workers/internal/common/config"
	"insertion-workers/internal/common/logger"
	"insertion-workers/internal/eligibility"
)

// New builds the provider used by workers and the ops server: postgres,
// fronted by redis when rdb is set.
func New(db *sql.DB, rdb *redis.Client, cfg config.EligibilityConfig, log logger.Logger) eligibility.ReferenceProvider {
	var provider eligibility.ReferenceProvider = NewPostgresProvider(db, time.Duration(cfg.LookupTimeout)*time.Millisecond)
	if rdb == nil || cfg.PolicyCacheTTL <= 0 {
		return provider
	}
	return NewCachedProvider(provider, rdb, time.Duration(cfg.PolicyCacheTTL)*time.Millisecond, log)
}
