package storage

import (
	"context"
	"fmt"

	"dishdash/internal/infrastructure/config"
)

// 固定的儲存鍵
const (
	TokenKey = "auth_token"
	UserKey  = "user"
)

// Storage 用戶端鍵值儲存（相當於瀏覽器的 localStorage）
//
// Get 的第二個回傳值表示鍵是否存在。
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// New 依設定建立儲存後端
func New(ctx context.Context, cfg *config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return NewFileStorage(cfg.Path)
	case config.BackendMemory:
		return NewMemoryStorage(cfg.TTL), nil
	case config.BackendRedis:
		return NewRedisStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
