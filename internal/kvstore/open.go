package kvstore

import (
	"fmt"
	"strings"

	"github.com/shopizen/internal/cache"
	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/repository"

	"gorm.io/gorm"
)

// Open 按配置创建存储后端
func Open(cfg config.StorageConfig, db *gorm.DB) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	switch backend {
	case constants.StorageBackendMemory:
		return NewMemoryStore(), nil
	case "", constants.StorageBackendDatabase:
		if db == nil {
			return nil, fmt.Errorf("storage backend %q requires database", constants.StorageBackendDatabase)
		}
		return NewDatabaseStore(repository.NewKVRepository(db)), nil
	case constants.StorageBackendRedis:
		client := cache.Client()
		if client == nil {
			return nil, fmt.Errorf("storage backend %q requires redis.enabled", constants.StorageBackendRedis)
		}
		return NewRedisStore(client, cfg.Prefix, cfg.Timeout()), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
