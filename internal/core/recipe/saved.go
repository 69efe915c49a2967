package recipe

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"dishdash/internal/core/navigation"
	"dishdash/internal/pkg/common"

	"go.uber.org/zap"
)

// MsgSavedLoadFailed 收藏清單載入失敗
const MsgSavedLoadFailed = "Failed to load saved recipes. Please try again."

// Filters 收藏清單的篩選條件，零值表示不篩選
type Filters struct {
	Search        string
	MaxCookTime   int
	MaxDifficulty int
}

// IsActive 是否有任何條件
func (f Filters) IsActive() bool {
	return f.Search != "" || f.MaxCookTime > 0 || f.MaxDifficulty > 0
}

// SavedPage 收藏清單頁
type SavedPage struct {
	api      API
	boundary *navigation.Boundary

	mu       sync.RWMutex
	recipes  []Recipe
	selected *Recipe
	loading  bool
	removing string
	errMsg   string
	seq      uint64
}

// NewSavedPage 創建收藏清單頁
func NewSavedPage(parent context.Context, recipeAPI API) *SavedPage {
	return &SavedPage{
		api:      recipeAPI,
		boundary: navigation.NewBoundary(parent),
	}
}

// Load 取得完整的收藏清單
func (p *SavedPage) Load(ctx context.Context) error {
	ctx, cancel := p.boundary.Bind(ctx)
	defer cancel()

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.loading = true
	p.errMsg = ""
	p.mu.Unlock()

	saved, err := p.api.SavedRecipes(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq || p.boundary.Closed() {
		return context.Canceled
	}
	p.loading = false

	if err != nil {
		common.LogWarn("載入收藏清單失敗", zap.Error(err))
		p.errMsg = MsgSavedLoadFailed
		return fmt.Errorf("%s: %w", MsgSavedLoadFailed, err)
	}

	recipes := make([]Recipe, 0, len(saved))
	for _, s := range saved {
		recipes = append(recipes, FromSaved(s))
	}
	p.recipes = recipes
	return nil
}

// Search 名稱或描述包含 q（不分大小寫）的食譜，空字串回傳全部
func (p *SavedPage) Search(q string) []Recipe {
	return p.Filter(Filters{Search: q})
}

// Filter 依條件篩選，每次呼叫都重新計算
func (p *SavedPage) Filter(f Filters) []Recipe {
	p.mu.RLock()
	defer p.mu.RUnlock()

	// 查詢字串照原樣比對，只有空字串代表不篩選
	needle := strings.ToLower(f.Search)
	out := make([]Recipe, 0, len(p.recipes))
	for _, r := range p.recipes {
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) {
			continue
		}
		if f.MaxCookTime > 0 && r.CookTime > f.MaxCookTime {
			continue
		}
		if f.MaxDifficulty > 0 && difficultyValue(r.Difficulty) > f.MaxDifficulty {
			continue
		}
		out = append(out, r)
	}
	return out
}

// difficultyValue 解析 "n/10"，未知難度視為 0
func difficultyValue(d string) int {
	if v := parseOptionalInt(d); v != nil {
		return *v
	}
	return 0
}

// Unsave 取消收藏；成功後移除並關閉指向它的詳情視窗
func (p *SavedPage) Unsave(ctx context.Context, id string) error {
	ctx, cancel := p.boundary.Bind(ctx)
	defer cancel()

	p.mu.Lock()
	p.removing = id
	p.mu.Unlock()

	err := p.api.UnsaveRecipe(ctx, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.removing = ""
	if p.boundary.Closed() {
		return context.Canceled
	}
	if err != nil {
		common.LogWarn("取消收藏失敗", zap.String("recipe_id", id), zap.Error(err))
		p.errMsg = MsgUnsaveFailed
		return fmt.Errorf("%s: %w", MsgUnsaveFailed, err)
	}

	kept := p.recipes[:0]
	for _, r := range p.recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	p.recipes = kept
	if p.selected != nil && p.selected.ID == id {
		p.selected = nil
	}
	return nil
}

// Open 打開收藏食譜的詳情
func (p *SavedPage) Open(id string) (Recipe, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.recipes {
		if r.ID == id {
			p.selected = &r
			return r, true
		}
	}
	return Recipe{}, false
}

// Selected 詳情視窗中的食譜
func (p *SavedPage) Selected() *Recipe {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.selected == nil {
		return nil
	}
	r := *p.selected
	return &r
}

// CloseDetails 關閉詳情視窗
func (p *SavedPage) CloseDetails() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
}

// Recipes 完整的收藏清單
func (p *SavedPage) Recipes() []Recipe {
	return p.Filter(Filters{})
}

// IsLoading 是否載入中
func (p *SavedPage) IsLoading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Removing 正在取消收藏的 id
func (p *SavedPage) Removing() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.removing
}

// Error 頁面的錯誤訊息
func (p *SavedPage) Error() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errMsg
}

// Close 離開頁面
func (p *SavedPage) Close() {
	p.boundary.Close()
}
