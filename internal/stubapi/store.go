package stubapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"dishdash/internal/core/api"
)

// 存放區錯誤
var (
	ErrRecipeNotFound = errors.New("Recipe not found")
	ErrAlreadySaved   = errors.New("Recipe already saved by user")
	ErrNotSaved       = errors.New("Recipe not found in saved recipes")
)

// Store stub 伺服器的記憶體資料
type Store struct {
	mu sync.RWMutex

	users       map[string]*api.User
	preferences map[int64]*api.Preferences
	recipes     map[int64]*api.RecipeDetail
	recipeNames map[string]int64
	saved       map[int64][]api.SavedRecipe

	nextUserID   int64
	nextPrefsID  int64
	nextRecipeID int64
	nextSavedID  int64

	now func() time.Time
}

// NewStore 創建空的存放區
func NewStore() *Store {
	return &Store{
		users:       make(map[string]*api.User),
		preferences: make(map[int64]*api.Preferences),
		recipes:     make(map[int64]*api.RecipeDetail),
		recipeNames: make(map[string]int64),
		saved:       make(map[int64][]api.SavedRecipe),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// UpsertUser 取得使用者，不存在時建立
func (s *Store) UpsertUser(username string) api.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[username]; ok {
		return *u
	}
	s.nextUserID++
	u := &api.User{ID: s.nextUserID, Username: username, CreatedAt: api.Timestamp{Time: s.now()}}
	s.users[username] = u
	return *u
}

// User 依名稱查詢使用者
func (s *Store) User(username string) (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return api.User{}, false
	}
	return *u, true
}

// Preferences 取得偏好設定；沒有記錄時回傳只有兩個空清單的預設值
func (s *Store) Preferences(userID int64) api.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.preferences[userID]; ok {
		return copyPreferences(p)
	}
	return api.Preferences{DietaryRestrictions: []string{}, Allergies: []string{}}
}

// UpdatePreferences 只更新有送出的欄位
func (s *Store) UpdatePreferences(userID int64, update api.PreferencesUpdate) api.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.preferences[userID]
	if !ok {
		s.nextPrefsID++
		id, uid := s.nextPrefsID, userID
		p = &api.Preferences{ID: &id, UserID: &uid, DietaryRestrictions: []string{}, Allergies: []string{}}
		s.preferences[userID] = p
	}

	if update.DietaryRestrictions != nil {
		p.DietaryRestrictions = append([]string{}, *update.DietaryRestrictions...)
	}
	if update.Allergies != nil {
		p.Allergies = append([]string{}, *update.Allergies...)
	}
	if update.CookingTimePreference != nil {
		v := *update.CookingTimePreference
		p.CookingTimePreference = &v
	}
	if update.DifficultyPreference != nil {
		v := *update.DifficultyPreference
		p.DifficultyPreference = &v
	}
	ts := api.Timestamp{Time: s.now()}
	p.UpdatedAt = &ts

	return copyPreferences(p)
}

func copyPreferences(p *api.Preferences) api.Preferences {
	out := *p
	out.DietaryRestrictions = append([]string{}, p.DietaryRestrictions...)
	out.Allergies = append([]string{}, p.Allergies...)
	return out
}

// RecipeByName 依名稱取得食譜，不存在時以 build 建立
func (s *Store) RecipeByName(name string, build func() api.RecipeDetail) api.RecipeDetail {
	key := strings.ToLower(strings.TrimSpace(name))

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.recipeNames[key]; ok {
		return *s.recipes[id]
	}

	r := build()
	s.nextRecipeID++
	r.ID = s.nextRecipeID
	r.CreatedAt = api.Timestamp{Time: s.now()}
	s.recipes[r.ID] = &r
	s.recipeNames[key] = r.ID
	return r
}

// Save 收藏食譜
func (s *Store) Save(userID, recipeID int64) (api.SavedRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipe, ok := s.recipes[recipeID]
	if !ok {
		return api.SavedRecipe{}, ErrRecipeNotFound
	}
	for _, sr := range s.saved[userID] {
		if sr.Recipe.ID == recipeID {
			return api.SavedRecipe{}, ErrAlreadySaved
		}
	}

	s.nextSavedID++
	sr := api.SavedRecipe{
		ID:      s.nextSavedID,
		UserID:  userID,
		Recipe:  *recipe,
		SavedAt: api.Timestamp{Time: s.now()},
	}
	s.saved[userID] = append(s.saved[userID], sr)
	return sr, nil
}

// Unsave 取消收藏
func (s *Store) Unsave(userID, recipeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.saved[userID]
	for i, sr := range list {
		if sr.Recipe.ID == recipeID {
			s.saved[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotSaved
}

// Saved 使用者的收藏，最新的在前
func (s *Store) Saved(userID int64) []api.SavedRecipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.SavedRecipe, len(s.saved[userID]))
	copy(out, s.saved[userID])
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SavedAt.Equal(out[j].SavedAt.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].SavedAt.After(out[j].SavedAt.Time)
	})
	return out
}

// Stats 存放區統計
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved := 0
	for _, list := range s.saved {
		saved += len(list)
	}
	return map[string]int{
		"users":   len(s.users),
		"recipes": len(s.recipes),
		"saved":   saved,
	}
}
