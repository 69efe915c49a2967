package stubapi

import (
	"errors"
	"net/http"
	"strconv"

	"dishdash/internal/core/api"
	"dishdash/internal/pkg/common"
	"dishdash/internal/stubapi/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler stub 伺服器的路由處理器
type Handler struct {
	store     *Store
	issuer    *TokenIssuer
	generator Generator
}

// NewHandler 創建處理器
func NewHandler(store *Store, issuer *TokenIssuer) *Handler {
	return &Handler{store: store, issuer: issuer}
}

type loginBody struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
}

type preferencesBody struct {
	DietaryRestrictions   *[]string `json:"dietary_restrictions"`
	Allergies             *[]string `json:"allergies"`
	CookingTimePreference *int      `json:"cooking_time_preference" binding:"omitempty,min=0"`
	DifficultyPreference  *int      `json:"difficulty_preference" binding:"omitempty,min=1,max=10"`
}

type generateBody struct {
	Ingredients         []string `json:"ingredients" binding:"required,min=1"`
	CookingTime         *int     `json:"cooking_time" binding:"omitempty,min=1"`
	Difficulty          *int     `json:"difficulty" binding:"omitempty,min=1,max=10"`
	Servings            int      `json:"servings" binding:"omitempty,min=1"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Allergies           []string `json:"allergies"`
}

type detailsBody struct {
	RecipeName          string   `json:"recipe_name" binding:"required"`
	Servings            int      `json:"servings" binding:"omitempty,min=1"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
}

// bind 解析請求體，失敗時回 422；請求體超過上限時回 413
func bind(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		if middleware.RejectOversizedBody(c, err) {
			return false
		}
		common.WriteErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// Login 以使用者名稱登入，首次出現時建立使用者
func (h *Handler) Login(c *gin.Context) {
	var body loginBody
	if !bind(c, &body) {
		return
	}

	user := h.store.UpsertUser(body.Username)
	token, err := h.issuer.Issue(user.Username)
	if err != nil {
		common.LogError("簽發權杖失敗", zap.Error(err))
		common.WriteErrorResponse(c, http.StatusInternalServerError, "Authentication failed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, api.LoginResponse{AccessToken: token, TokenType: "bearer", Username: user.Username})
}

// Me 目前的使用者
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// GetPreferences 偏好設定
func (h *Handler) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Preferences(currentUser(c).ID))
}

// UpdatePreferences 部分更新偏好設定
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var body preferencesBody
	if !bind(c, &body) {
		return
	}

	prefs := h.store.UpdatePreferences(currentUser(c).ID, api.PreferencesUpdate{
		DietaryRestrictions:   body.DietaryRestrictions,
		Allergies:             body.Allergies,
		CookingTimePreference: body.CookingTimePreference,
		DifficultyPreference:  body.DifficultyPreference,
	})
	c.JSON(http.StatusOK, prefs)
}

// Generate 產生食譜建議
func (h *Handler) Generate(c *gin.Context) {
	var body generateBody
	if !bind(c, &body) {
		return
	}

	recipes := h.generator.Suggest(api.GenerateRequest{
		Ingredients:         body.Ingredients,
		CookingTime:         body.CookingTime,
		Difficulty:          body.Difficulty,
		Servings:            body.Servings,
		DietaryRestrictions: body.DietaryRestrictions,
		Allergies:           body.Allergies,
	})
	if len(recipes) == 0 {
		common.WriteErrorResponse(c, http.StatusNotFound, "No recipes found for the given ingredients")
		return
	}

	c.JSON(http.StatusOK, api.GenerateResponse{Recipes: recipes})
}

// Details 取得食譜詳情，同名的食譜只建立一次
func (h *Handler) Details(c *gin.Context) {
	var body detailsBody
	if !bind(c, &body) {
		return
	}

	req := api.DetailsRequest{
		RecipeName:          body.RecipeName,
		Servings:            body.Servings,
		DietaryRestrictions: body.DietaryRestrictions,
	}
	recipe := h.store.RecipeByName(body.RecipeName, func() api.RecipeDetail {
		return h.generator.Details(req)
	})
	c.JSON(http.StatusOK, recipe)
}

// ListSaved 收藏清單
func (h *Handler) ListSaved(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Saved(currentUser(c).ID))
}

// Save 收藏食譜
func (h *Handler) Save(c *gin.Context) {
	recipeID, ok := recipeIDParam(c)
	if !ok {
		return
	}

	saved, err := h.store.Save(currentUser(c).ID, recipeID)
	switch {
	case errors.Is(err, ErrRecipeNotFound):
		common.WriteErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadySaved):
		common.WriteErrorResponse(c, http.StatusBadRequest, err.Error())
	case err != nil:
		common.WriteErrorResponse(c, http.StatusInternalServerError, "Failed to save recipe: "+err.Error())
	default:
		c.JSON(http.StatusOK, saved)
	}
}

// Unsave 取消收藏
func (h *Handler) Unsave(c *gin.Context) {
	recipeID, ok := recipeIDParam(c)
	if !ok {
		return
	}

	if err := h.store.Unsave(currentUser(c).ID, recipeID); err != nil {
		common.WriteErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe unsaved successfully"})
}

func recipeIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("recipe_id"), 10, 64)
	if err != nil {
		common.WriteErrorResponse(c, http.StatusUnprocessableEntity, "recipe_id must be an integer")
		return 0, false
	}
	return id, true
}
