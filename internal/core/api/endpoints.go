package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"dishdash/internal/pkg/common"

	"github.com/go-playground/validator/v10"
)

// 遠端端點
const (
	PathLogin       = "/auth/login"
	PathMe          = "/me"
	PathPreferences = "/me/preferences"
	PathGenerate    = "/recipes/generate"
	PathDetails     = "/recipes/details"
	PathSaved       = "/recipes/saved"
)

var validate = validator.New()

// call 發送請求並解析、驗證回應
func call[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (*T, error) {
	resp := c.Request(ctx, endpoint, opts)
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var out T
	if err := common.ParseJSONBytes(resp.Data, &out); err != nil {
		return nil, malformed(endpoint, err)
	}
	if err := validate.Struct(&out); err != nil {
		return nil, malformed(endpoint, err)
	}
	return &out, nil
}

func malformed(endpoint string, err error) error {
	return common.NewError(common.ErrCodeMalformedResponse,
		fmt.Sprintf("malformed response from %s", endpoint), 0, err)
}

// Login 以使用者名稱換取權杖
func (c *Client) Login(ctx context.Context, username string) (*LoginResponse, error) {
	return call[LoginResponse](ctx, c, PathLogin, RequestOptions{
		Method: http.MethodPost,
		Body:   LoginRequest{Username: username},
	})
}

// CurrentUser 取得目前使用者
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	return call[User](ctx, c, PathMe, RequestOptions{})
}

// GetPreferences 取得偏好設定
func (c *Client) GetPreferences(ctx context.Context) (*Preferences, error) {
	return call[Preferences](ctx, c, PathPreferences, RequestOptions{})
}

// UpdatePreferences 部分更新偏好設定，回傳伺服器的最新版本
func (c *Client) UpdatePreferences(ctx context.Context, update PreferencesUpdate) (*Preferences, error) {
	return call[Preferences](ctx, c, PathPreferences, RequestOptions{
		Method: http.MethodPut,
		Body:   update,
	})
}

// GenerateRecipes 依食材與限制產生建議
func (c *Client) GenerateRecipes(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	return call[GenerateResponse](ctx, c, PathGenerate, RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	})
}

// RecipeDetails 展開單一建議為完整食譜
func (c *Client) RecipeDetails(ctx context.Context, req DetailsRequest) (*RecipeDetail, error) {
	if req.DietaryRestrictions == nil {
		req.DietaryRestrictions = []string{}
	}
	return call[RecipeDetail](ctx, c, PathDetails, RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	})
}

// SavedRecipes 列出收藏的食譜
func (c *Client) SavedRecipes(ctx context.Context) ([]SavedRecipe, error) {
	resp := c.Request(ctx, PathSaved, RequestOptions{})
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var out []SavedRecipe
	if err := common.ParseJSONBytes(resp.Data, &out); err != nil {
		return nil, malformed(PathSaved, err)
	}
	for i := range out {
		if err := validate.Struct(&out[i]); err != nil {
			return nil, malformed(PathSaved, err)
		}
	}
	if out == nil {
		out = []SavedRecipe{}
	}
	return out, nil
}

// SaveRecipe 收藏食譜
func (c *Client) SaveRecipe(ctx context.Context, recipeID string) (*SavedRecipe, error) {
	return call[SavedRecipe](ctx, c, savedPath(recipeID), RequestOptions{Method: http.MethodPost})
}

// UnsaveRecipe 取消收藏；回應內容只有訊息，不解析
func (c *Client) UnsaveRecipe(ctx context.Context, recipeID string) error {
	return c.Request(ctx, savedPath(recipeID), RequestOptions{Method: http.MethodDelete}).Err()
}

func savedPath(recipeID string) string {
	return PathSaved + "/" + url.PathEscape(recipeID)
}
