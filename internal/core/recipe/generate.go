package recipe

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"dishdash/internal/core/api"
	"dishdash/internal/core/navigation"
	"dishdash/internal/pkg/common"

	"go.uber.org/zap"
)

// 產生表單的使用者訊息
const (
	MsgNoIngredients   = "Please add at least one ingredient"
	MsgQuotaExceeded   = "API quota temporarily exceeded. Please try again in a few minutes."
	MsgTooManyRequests = "Too many requests. Please wait a moment before trying again."
	MsgGenerateFailed  = "Failed to generate recipe. Please try again."
)

// FormState 表單狀態
type FormState int

const (
	FormIdle FormState = iota
	FormSubmitting
	FormNavigated
	FormError
)

// PreferencesSource 提供目前的飲食偏好
type PreferencesSource interface {
	DietaryRestrictions() []string
	Allergies() []string
}

// Form 使用者輸入；時間與難度保留原始字串
type Form struct {
	Ingredients []string
	CookingTime string
	Difficulty  string
}

// NewForm 建立帶一個空白食材欄位的表單
func NewForm() *Form {
	return &Form{Ingredients: []string{""}}
}

// AddIngredient 在最後新增一個空白欄位
func (f *Form) AddIngredient() {
	f.Ingredients = append(f.Ingredients, "")
}

// InsertIngredientAfter 在指定位置後插入空白欄位
func (f *Form) InsertIngredientAfter(index int) {
	if index < 0 || index >= len(f.Ingredients) {
		f.AddIngredient()
		return
	}
	f.Ingredients = append(f.Ingredients[:index+1], append([]string{""}, f.Ingredients[index+1:]...)...)
}

// SetIngredient 修改指定欄位
func (f *Form) SetIngredient(index int, value string) {
	if index >= 0 && index < len(f.Ingredients) {
		f.Ingredients[index] = value
	}
}

// RemoveIngredient 移除欄位，至少保留一個
func (f *Form) RemoveIngredient(index int) {
	if len(f.Ingredients) <= 1 || index < 0 || index >= len(f.Ingredients) {
		return
	}
	f.Ingredients = append(f.Ingredients[:index], f.Ingredients[index+1:]...)
}

// ValidIngredients 非空白的食材，保留原始值
func (f *Form) ValidIngredients() []string {
	return common.NonBlank(f.Ingredients)
}

// Generator 產生表單的流程
type Generator struct {
	api   API
	prefs PreferencesSource

	mu     sync.RWMutex
	state  FormState
	errMsg string
}

// NewGenerator 創建產生流程；prefs 可以為 nil
func NewGenerator(recipeAPI API, prefs PreferencesSource) *Generator {
	return &Generator{api: recipeAPI, prefs: prefs}
}

// Submit 驗證並送出表單，成功時回傳跳往結果頁的導航
func (g *Generator) Submit(ctx context.Context, form *Form) (navigation.Navigation, error) {
	ingredients := form.ValidIngredients()
	if len(ingredients) == 0 {
		g.set(FormError, MsgNoIngredients)
		return navigation.Navigation{}, common.NewValidationError(MsgNoIngredients)
	}

	g.set(FormSubmitting, "")

	dietary, allergies := []string{}, []string{}
	if g.prefs != nil {
		dietary, allergies = g.prefs.DietaryRestrictions(), g.prefs.Allergies()
	}

	req := api.GenerateRequest{
		Ingredients:         ingredients,
		CookingTime:         parseOptionalInt(form.CookingTime),
		Difficulty:          parseOptionalInt(form.Difficulty),
		Servings:            DefaultServings,
		DietaryRestrictions: dietary,
		Allergies:           allergies,
	}

	if g.api == nil {
		return g.fail(common.ErrMissingAPIURL)
	}
	if _, err := g.api.GenerateRecipes(ctx, req); err != nil {
		return g.fail(err)
	}

	g.set(FormNavigated, "")
	return navigation.ResultsQuery{
		Ingredients:         ingredients,
		DietaryRestrictions: dietary,
		Allergies:           allergies,
	}.Navigation(), nil
}

func (g *Generator) fail(err error) (navigation.Navigation, error) {
	msg := GenerationErrorMessage(err)
	common.LogWarn("產生食譜失敗", zap.Error(err))
	g.set(FormError, msg)
	return navigation.Navigation{}, errors.New(msg)
}

// State 目前狀態
func (g *Generator) State() FormState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Error 最近的錯誤訊息
func (g *Generator) Error() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.errMsg
}

func (g *Generator) set(state FormState, msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = state
	g.errMsg = msg
}

// GenerationErrorMessage 將錯誤轉為使用者看得懂的訊息
func GenerationErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "3505") && strings.Contains(msg, "service_tier_capacity_exceeded"):
		return MsgQuotaExceeded
	case common.StatusCode(err) == 429 || strings.Contains(msg, "429"):
		return MsgTooManyRequests
	default:
		return MsgGenerateFailed
	}
}

var leadingInt = regexp.MustCompile(`^[+-]?\d+`)

// parseOptionalInt 取開頭的整數（"30 min" 得到 30），空白或沒有數字時為 nil
func parseOptionalInt(raw string) *int {
	m := leadingInt.FindString(strings.TrimSpace(raw))
	if m == "" {
		return nil
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &v
}
