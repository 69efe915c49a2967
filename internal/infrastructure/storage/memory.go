package storage

import (
	"context"
	"sync"
	"time"

	"dishdash/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStorage 記憶體儲存，行程結束即消失
type MemoryStorage struct {
	mu    sync.RWMutex
	ttl   time.Duration
	store map[string]memoryEntry
	stats memoryStats
	done  chan struct{}
	once  sync.Once
}

// memoryEntry 儲存條目
type memoryEntry struct {
	value     string
	expiresAt time.Time // 零值表示不過期
}

// memoryStats 儲存統計
type memoryStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStorage 創建記憶體儲存；ttl 為 0 表示永不過期
func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	m := &MemoryStorage{
		ttl:   ttl,
		store: make(map[string]memoryEntry),
		done:  make(chan struct{}),
	}

	// 只有設定 TTL 時才需要背景清理
	if ttl > 0 {
		go m.startCleanup(ttl)
	}

	return m
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Get 取得值
func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.store[key]
	if !ok {
		m.stats.misses++
		return "", false, nil
	}
	if entry.expired(time.Now()) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		return "", false, nil
	}

	m.stats.hits++
	return entry.value, true, nil
}

// Set 設置值
func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expiresAt = time.Now().Add(m.ttl)
	}
	m.store[key] = entry
	return nil
}

// Remove 刪除值，鍵不存在時不報錯
func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.store, key)
	return nil
}

// startCleanup 啟動清理過期條目的協程
func (m *MemoryStorage) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.done:
			return
		}
	}
}

// cleanup 清理過期的條目
func (m *MemoryStorage) cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	count := 0
	for key, entry := range m.store {
		if entry.expired(now) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("Cleaned up expired storage entries",
			zap.Int("count", count),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// GetStats 獲取統計信息
func (m *MemoryStorage) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"size":      len(m.store),
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
	}
}

// Close 關閉儲存並清空內容
func (m *MemoryStorage) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]memoryEntry)
	return nil
}
