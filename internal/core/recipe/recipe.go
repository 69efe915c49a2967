package recipe

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"dishdash/internal/core/api"
)

// NotLoaded 尚未取得詳情時的佔位文字
const NotLoaded = "Not loaded yet"

// DefaultServings 產生與詳情請求固定使用的份量
const DefaultServings = 2

// API 食譜流程需要的遠端操作
type API interface {
	GenerateRecipes(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error)
	RecipeDetails(ctx context.Context, req api.DetailsRequest) (*api.RecipeDetail, error)
	SavedRecipes(ctx context.Context) ([]api.SavedRecipe, error)
	SaveRecipe(ctx context.Context, recipeID string) (*api.SavedRecipe, error)
	UnsaveRecipe(ctx context.Context, recipeID string) error
}

// Recipe 顯示用的食譜
type Recipe struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	PrepTime     int      `json:"prep_time"`
	CookTime     int      `json:"cook_time"`
	Servings     int      `json:"servings"`
	Difficulty   string   `json:"difficulty"`
	// Detailed 為 true 時 ID 是伺服器分配的永久 id
	Detailed bool `json:"detailed"`
}

// FromSuggestion 將建議轉為帶臨時 id 的輕量食譜
func FromSuggestion(s api.Suggestion, tempID string) Recipe {
	return Recipe{
		ID:           tempID,
		Title:        s.Name,
		Description:  deref(s.Description),
		Ingredients:  []string{NotLoaded},
		Instructions: []string{NotLoaded},
		PrepTime:     0,
		CookTime:     orZero(s.CookingTime),
		Servings:     DefaultServings,
		Difficulty:   FormatDifficulty(s.Difficulty),
	}
}

// FromDetail 將完整詳情轉為食譜，標題沿用請求時的名稱
func FromDetail(title string, d api.RecipeDetail) Recipe {
	if title == "" {
		title = d.Name
	}
	ingredients := make([]string, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		ingredients = append(ingredients, ing.Quantity+" "+ing.Name)
	}
	return Recipe{
		ID:           strconv.FormatInt(d.ID, 10),
		Title:        title,
		Description:  deref(d.Description),
		Ingredients:  ingredients,
		Instructions: ParseInstructions(d.Instructions),
		PrepTime:     orZero(d.PrepTime),
		CookTime:     orZero(d.CookingTime),
		Servings:     d.Servings,
		Difficulty:   FormatDifficulty(d.Difficulty),
		Detailed:     true,
	}
}

// FromSaved 收藏清單中的食譜
func FromSaved(s api.SavedRecipe) Recipe {
	return FromDetail(s.Recipe.Name, s.Recipe)
}

var stepMarker = regexp.MustCompile(`^\d+\.\s*`)

// ParseInstructions 以換行拆分步驟，去掉空行與開頭的 "N."
func ParseInstructions(raw string) []string {
	lines := strings.Split(raw, "\n")
	steps := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		steps = append(steps, stepMarker.ReplaceAllString(line, ""))
	}
	return steps
}

// FormatDifficulty 難度顯示為 "n/10"，沒有或為 0 時為 "Unknown"
func FormatDifficulty(d *int) string {
	if d == nil || *d == 0 {
		return "Unknown"
	}
	return strconv.Itoa(*d) + "/10"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
