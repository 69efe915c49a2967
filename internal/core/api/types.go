package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp 接受帶或不帶時區的 ISO-8601 時間（後端常回傳無時區的格式）
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON 實現 json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", raw)
}

// MarshalJSON 實現 json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// User 目前登入的使用者
type User struct {
	ID        int64     `json:"id" validate:"required"`
	Username  string    `json:"username" validate:"required"`
	CreatedAt Timestamp `json:"created_at"`
}

// LoginRequest 登入請求（只需使用者名稱）
type LoginRequest struct {
	Username string `json:"username"`
}

// LoginResponse 登入回應
type LoginResponse struct {
	AccessToken string `json:"access_token" validate:"required"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
}

// Preferences 使用者的飲食偏好
type Preferences struct {
	ID                    *int64     `json:"id,omitempty"`
	UserID                *int64     `json:"user_id,omitempty"`
	DietaryRestrictions   []string   `json:"dietary_restrictions"`
	Allergies             []string   `json:"allergies"`
	CookingTimePreference *int       `json:"cooking_time_preference,omitempty" validate:"omitempty,min=0"`
	DifficultyPreference  *int       `json:"difficulty_preference,omitempty" validate:"omitempty,min=1,max=10"`
	UpdatedAt             *Timestamp `json:"updated_at,omitempty"`
}

// PreferencesUpdate 部分更新；nil 欄位不送出
type PreferencesUpdate struct {
	DietaryRestrictions   *[]string `json:"dietary_restrictions,omitempty"`
	Allergies             *[]string `json:"allergies,omitempty"`
	CookingTimePreference *int      `json:"cooking_time_preference,omitempty"`
	DifficultyPreference  *int      `json:"difficulty_preference,omitempty"`
}

// IsEmpty 沒有任何欄位要更新
func (u PreferencesUpdate) IsEmpty() bool {
	return u.DietaryRestrictions == nil && u.Allergies == nil &&
		u.CookingTimePreference == nil && u.DifficultyPreference == nil
}

// GenerateRequest 依食材產生食譜建議
type GenerateRequest struct {
	Ingredients         []string `json:"ingredients"`
	CookingTime         *int     `json:"cooking_time"`
	Difficulty          *int     `json:"difficulty"`
	Servings            int      `json:"servings"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies,omitempty"`
}

// Suggestion 輕量的食譜建議，沒有食材與步驟
type Suggestion struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	CookingTime *int    `json:"cooking_time" validate:"omitempty,min=0"`
	Difficulty  *int    `json:"difficulty"`
}

// GenerateResponse 產生建議的回應
type GenerateResponse struct {
	Recipes []Suggestion `json:"recipes" validate:"required,dive"`
}

// DetailsRequest 取得單一食譜詳情
type DetailsRequest struct {
	RecipeName          string   `json:"recipe_name"`
	Servings            int      `json:"servings"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
}

// IngredientLine 食材與份量
type IngredientLine struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity"`
}

// RecipeDetail 完整的食譜，帶有伺服器分配的 id
type RecipeDetail struct {
	ID           int64            `json:"id" validate:"required"`
	Name         string           `json:"name"`
	Description  *string          `json:"description"`
	Servings     int              `json:"servings" validate:"min=0"`
	Ingredients  []IngredientLine `json:"ingredients" validate:"required,dive"`
	Instructions string           `json:"instructions"`
	CookingTime  *int             `json:"cooking_time"`
	PrepTime     *int             `json:"prep_time"`
	Difficulty   *int             `json:"difficulty"`
	CreatedAt    Timestamp        `json:"created_at"`
}

// SavedRecipe 使用者收藏的食譜
type SavedRecipe struct {
	ID      int64        `json:"id"`
	UserID  int64        `json:"user_id"`
	Recipe  RecipeDetail `json:"recipe"`
	SavedAt Timestamp    `json:"saved_at"`
}
