package preferences

import (
	"context"
	"slices"
	"sync"

	"dishdash/internal/core/api"
	"dishdash/internal/pkg/common"

	"go.uber.org/zap"
)

// API 偏好設定需要的遠端操作
type API interface {
	GetPreferences(ctx context.Context) (*api.Preferences, error)
	UpdatePreferences(ctx context.Context, update api.PreferencesUpdate) (*api.Preferences, error)
}

// Store 保存目前使用者的偏好設定
//
// 較舊的請求晚於較新的請求回來時，結果會被丟棄。
type Store struct {
	api API

	mu       sync.RWMutex
	prefs    *api.Preferences
	errMsg   string
	inflight int
	seq      uint64
}

// NewStore 創建偏好設定存放區
func NewStore(prefsAPI API) *Store {
	return &Store{api: prefsAPI}
}

func (s *Store) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.inflight++
	return s.seq
}

// finish 結束請求，回傳是否仍是最新的一次
func (s *Store) finish(seq uint64) bool {
	s.inflight--
	return seq == s.seq
}

// Load 取得偏好設定；成功時清除錯誤，失敗時只保留錯誤
func (s *Store) Load(ctx context.Context) error {
	seq := s.begin()
	prefs, err := s.api.GetPreferences(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish(seq) {
		common.LogDebug("丟棄過期的偏好設定回應")
		return err
	}

	if err != nil {
		common.LogWarn("載入偏好設定失敗", zap.Error(err))
		s.prefs = nil
		s.errMsg = err.Error()
		return err
	}

	s.prefs = normalize(prefs)
	s.errMsg = ""
	return nil
}

// Update 部分更新偏好設定；失敗時保留原值並記錄錯誤
func (s *Store) Update(ctx context.Context, update api.PreferencesUpdate) bool {
	seq := s.begin()
	prefs, err := s.api.UpdatePreferences(ctx, update)

	s.mu.Lock()
	defer s.mu.Unlock()
	latest := s.finish(seq)

	if err != nil {
		common.LogWarn("更新偏好設定失敗", zap.Error(err))
		if latest {
			s.errMsg = err.Error()
		}
		return false
	}

	if latest {
		s.prefs = normalize(prefs)
		s.errMsg = ""
	}
	return true
}

// Preferences 目前的偏好設定，尚未載入時為 nil
func (s *Store) Preferences() *api.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.prefs == nil {
		return nil
	}
	p := *s.prefs
	p.DietaryRestrictions = slices.Clone(s.prefs.DietaryRestrictions)
	p.Allergies = slices.Clone(s.prefs.Allergies)
	return &p
}

// Error 最近一次失敗的訊息
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// IsLoading 是否有請求進行中
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// DietaryRestrictions 目前的飲食限制，沒有時回傳空切片
func (s *Store) DietaryRestrictions() []string {
	if p := s.Preferences(); p != nil && p.DietaryRestrictions != nil {
		return p.DietaryRestrictions
	}
	return []string{}
}

// Allergies 目前的過敏原，沒有時回傳空切片
func (s *Store) Allergies() []string {
	if p := s.Preferences(); p != nil && p.Allergies != nil {
		return p.Allergies
	}
	return []string{}
}

// normalize 把 null 清單換成空清單
func normalize(p *api.Preferences) *api.Preferences {
	if p == nil {
		return &api.Preferences{DietaryRestrictions: []string{}, Allergies: []string{}}
	}
	out := *p
	if out.DietaryRestrictions == nil {
		out.DietaryRestrictions = []string{}
	}
	if out.Allergies == nil {
		out.Allergies = []string{}
	}
	return &out
}
