package navigation

import (
	"net/url"
	"strings"

	"dishdash/internal/pkg/common"
)

// 應用程式路由
const (
	RouteLogin       = "/auth/login"
	RouteHome        = "/"
	RouteGenerate    = "/recipes/generate"
	RouteResults     = "/recipes/results"
	RouteSaved       = "/recipes/saved"
	RoutePreferences = "/preferences"
	RouteProfile     = "/profile"
)

// 結果頁的查詢參數
const (
	ParamIngredients         = "ingredients"
	ParamDietaryRestrictions = "dietaryRestrictions"
	ParamAllergies           = "allergies"
)

var protectedRoutes = map[string]bool{
	RouteHome:        true,
	RouteGenerate:    true,
	RouteResults:     true,
	RouteSaved:       true,
	RoutePreferences: true,
	RouteProfile:     true,
}

// IsProtected 路由是否需要登入
func IsProtected(route string) bool {
	return protectedRoutes[route]
}

// Navigation 一次頁面跳轉
type Navigation struct {
	Path  string
	Query url.Values
}

// To 建立不帶參數的跳轉
func To(path string) Navigation {
	return Navigation{Path: path, Query: url.Values{}}
}

// String 組成 path?query 形式
func (n Navigation) String() string {
	if len(n.Query) == 0 {
		return n.Path
	}
	return n.Path + "?" + n.Query.Encode()
}

// Parse 解析 path?query 形式
func Parse(raw string) (Navigation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Navigation{}, err
	}
	path := u.Path
	if path == "" {
		path = RouteHome
	}
	return Navigation{Path: path, Query: u.Query()}, nil
}

// ResultsQuery 結果頁的輸入
type ResultsQuery struct {
	Ingredients         []string
	DietaryRestrictions []string
	Allergies           []string
}

// Navigation 轉成跳往結果頁的導航
func (q ResultsQuery) Navigation() Navigation {
	v := url.Values{}
	v.Set(ParamIngredients, common.JoinCSV(q.Ingredients))
	v.Set(ParamDietaryRestrictions, common.JoinCSV(q.DietaryRestrictions))
	v.Set(ParamAllergies, common.JoinCSV(q.Allergies))
	return Navigation{Path: RouteResults, Query: v}
}

// ParseResultsQuery 讀取結果頁的查詢參數，缺少的參數視為空清單
func ParseResultsQuery(v url.Values) ResultsQuery {
	return ResultsQuery{
		Ingredients:         splitParam(v.Get(ParamIngredients)),
		DietaryRestrictions: splitParam(v.Get(ParamDietaryRestrictions)),
		Allergies:           splitParam(v.Get(ParamAllergies)),
	}
}

func splitParam(raw string) []string {
	parts := common.SplitCSV(raw)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
