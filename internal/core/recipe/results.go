package recipe

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dishdash/internal/core/api"
	"dishdash/internal/core/navigation"
	"dishdash/internal/pkg/common"

	"go.uber.org/zap"
)

// 結果頁的使用者訊息
const (
	MsgLoadFailed    = "Failed to load recipes. Please try again."
	MsgDetailsFailed = "Failed to load recipe details. Please try again."
	MsgSaveFailed    = "Failed to save recipe. Please try again."
	MsgUnsaveFailed  = "Failed to unsave recipe. Please try again."
)

// ResultsPage 結果頁：重新產生建議，按需取得詳情並切換收藏
type ResultsPage struct {
	api      API
	boundary *navigation.Boundary
	newID    func() string

	mu             sync.RWMutex
	recipes        []Recipe
	saved          map[string]struct{}
	selected       *Recipe
	loading        bool
	loadingDetails string
	saving         bool
	errMsg         string
	loadSeq        uint64
}

// NewResultsPage 創建結果頁，parent 取消時頁面一併關閉
func NewResultsPage(parent context.Context, recipeAPI API) *ResultsPage {
	return &ResultsPage{
		api:      recipeAPI,
		boundary: navigation.NewBoundary(parent),
		newID:    common.GenerateUUID,
		saved:    make(map[string]struct{}),
	}
}

// Load 依查詢參數重新產生建議
func (p *ResultsPage) Load(ctx context.Context, query navigation.ResultsQuery) error {
	ctx, cancel := p.boundary.Bind(ctx)
	defer cancel()

	p.mu.Lock()
	p.loadSeq++
	seq := p.loadSeq
	p.loading = true
	p.errMsg = ""
	p.mu.Unlock()

	resp, err := p.api.GenerateRecipes(ctx, api.GenerateRequest{
		Ingredients:         query.Ingredients,
		Servings:            DefaultServings,
		DietaryRestrictions: query.DietaryRestrictions,
		Allergies:           query.Allergies,
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.loadSeq || p.boundary.Closed() {
		return context.Canceled
	}
	p.loading = false

	if err != nil {
		common.LogWarn("載入食譜建議失敗", zap.Error(err))
		p.errMsg = MsgLoadFailed
		return fmt.Errorf("%s: %w", MsgLoadFailed, err)
	}

	recipes := make([]Recipe, 0, len(resp.Recipes))
	for _, s := range resp.Recipes {
		recipes = append(recipes, FromSuggestion(s, p.newID()))
	}
	p.recipes = recipes
	common.LogDebug("食譜建議已載入", zap.Int("count", len(recipes)))
	return nil
}

// ViewDetails 取得建議的完整內容並打開詳情
func (p *ResultsPage) ViewDetails(ctx context.Context, id string) (Recipe, error) {
	p.mu.Lock()
	idx := p.indexLocked(id)
	if idx < 0 {
		p.mu.Unlock()
		return Recipe{}, common.NewError(common.ErrCodeNotFound, "Recipe not found", 0, nil)
	}
	current := p.recipes[idx]
	if current.Detailed {
		p.selected = &current
		p.mu.Unlock()
		return current, nil
	}
	p.loadingDetails = id
	p.mu.Unlock()

	ctx, cancel := p.boundary.Bind(ctx)
	defer cancel()

	detail, err := p.api.RecipeDetails(ctx, api.DetailsRequest{
		RecipeName:          current.Title,
		Servings:            DefaultServings,
		DietaryRestrictions: []string{},
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadingDetails == id {
		p.loadingDetails = ""
	}
	if p.boundary.Closed() {
		return Recipe{}, context.Canceled
	}
	if err != nil {
		common.LogWarn("載入食譜詳情失敗", zap.String("recipe", current.Title), zap.Error(err))
		p.errMsg = MsgDetailsFailed
		return Recipe{}, fmt.Errorf("%s: %w", MsgDetailsFailed, err)
	}

	full := FromDetail(current.Title, *detail)
	if full.Servings == 0 {
		full.Servings = DefaultServings
	}
	// 清單可能在等待時被重新載入
	if idx = p.indexLocked(id); idx >= 0 {
		p.recipes[idx] = full
	}
	p.selected = &full
	return full, nil
}

// Save 收藏已載入詳情的食譜，伺服器確認後才更新收藏集合
func (p *ResultsPage) Save(ctx context.Context, id string) error {
	return p.mutateSaved(ctx, id, true)
}

// Unsave 取消收藏
func (p *ResultsPage) Unsave(ctx context.Context, id string) error {
	return p.mutateSaved(ctx, id, false)
}

// ToggleSaved 依目前狀態收藏或取消收藏，回傳新的狀態
func (p *ResultsPage) ToggleSaved(ctx context.Context, id string) (bool, error) {
	if p.IsSaved(id) {
		if err := p.Unsave(ctx, id); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := p.Save(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (p *ResultsPage) mutateSaved(ctx context.Context, id string, save bool) error {
	p.mu.Lock()
	if !p.detailedLocked(id) {
		p.mu.Unlock()
		return common.ErrDetailsNotLoaded
	}
	p.saving = true
	p.mu.Unlock()

	ctx, cancel := p.boundary.Bind(ctx)
	defer cancel()

	var err error
	if save {
		_, err = p.api.SaveRecipe(ctx, id)
	} else {
		err = p.api.UnsaveRecipe(ctx, id)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.saving = false
	if p.boundary.Closed() {
		return context.Canceled
	}

	if err != nil {
		msg := MsgUnsaveFailed
		if save {
			msg = MsgSaveFailed
		}
		common.LogWarn("更新收藏失敗", zap.String("recipe_id", id), zap.Bool("save", save), zap.Error(err))
		p.errMsg = msg
		return fmt.Errorf("%s: %w", msg, err)
	}

	if save {
		p.saved[id] = struct{}{}
	} else {
		delete(p.saved, id)
	}
	p.errMsg = ""
	return nil
}

func (p *ResultsPage) indexLocked(id string) int {
	for i := range p.recipes {
		if p.recipes[i].ID == id {
			return i
		}
	}
	return -1
}

// detailedLocked id 是否屬於已載入詳情的食譜
func (p *ResultsPage) detailedLocked(id string) bool {
	if p.selected != nil && p.selected.ID == id && p.selected.Detailed {
		return true
	}
	idx := p.indexLocked(id)
	return idx >= 0 && p.recipes[idx].Detailed
}

// Recipes 目前的食譜清單
func (p *ResultsPage) Recipes() []Recipe {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Recipe, len(p.recipes))
	copy(out, p.recipes)
	return out
}

// Selected 詳情視窗中的食譜
func (p *ResultsPage) Selected() *Recipe {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.selected == nil {
		return nil
	}
	r := *p.selected
	return &r
}

// CloseDetails 關閉詳情視窗
func (p *ResultsPage) CloseDetails() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
}

// IsSaved id 是否已收藏
func (p *ResultsPage) IsSaved(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.saved[id]
	return ok
}

// SavedIDs 已收藏的 id，排序後回傳
func (p *ResultsPage) SavedIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.saved))
	for id := range p.saved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsLoading 建議是否載入中
func (p *ResultsPage) IsLoading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// LoadingDetails 正在載入詳情的食譜 id
func (p *ResultsPage) LoadingDetails() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadingDetails
}

// IsSaving 收藏請求是否進行中
func (p *ResultsPage) IsSaving() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.saving
}

// Error 頁面的錯誤訊息
func (p *ResultsPage) Error() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errMsg
}

// Close 離開頁面，取消所有進行中的請求
func (p *ResultsPage) Close() {
	p.boundary.Close()
}
