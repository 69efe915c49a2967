package stubapi

import (
	"testing"

	"dishdash/internal/core/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Deterministic(t *testing.T) {
	g := Generator{}
	req := api.GenerateRequest{Ingredients: []string{"egg", "rice"}}

	first := g.Suggest(req)
	second := g.Suggest(req)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	assert.LessOrEqual(t, len(first), 3)
	assert.Contains(t, first[0].Name, "Egg")
}

func TestGenerator_Constraints(t *testing.T) {
	g := Generator{}
	limit, level := 20, 3

	for _, s := range g.Suggest(api.GenerateRequest{Ingredients: []string{"tofu"}, CookingTime: &limit, Difficulty: &level}) {
		assert.LessOrEqual(t, *s.CookingTime, limit)
		assert.LessOrEqual(t, *s.Difficulty, level)
	}

	tooShort := 1
	assert.Empty(t, g.Suggest(api.GenerateRequest{Ingredients: []string{"tofu"}, CookingTime: &tooShort}))
	assert.Empty(t, g.Suggest(api.GenerateRequest{Ingredients: []string{" "}}))
}

func TestGenerator_Details(t *testing.T) {
	d := Generator{}.Details(api.DetailsRequest{RecipeName: "Egg Fried Rice"})
	assert.Equal(t, "Egg Fried Rice", d.Name)
	assert.Equal(t, 2, d.Servings)
	assert.NotEmpty(t, d.Ingredients)
	assert.Contains(t, d.Instructions, "\n2. ")
	require.NotNil(t, d.Difficulty)
	assert.GreaterOrEqual(t, *d.Difficulty, 1)
	assert.LessOrEqual(t, *d.Difficulty, 10)
}

func TestStore_SavedOrder(t *testing.T) {
	s := NewStore()
	u := s.UpsertUser("alice")
	a := s.RecipeByName("A", func() api.RecipeDetail { return api.RecipeDetail{Name: "A"} })
	b := s.RecipeByName("b", func() api.RecipeDetail { return api.RecipeDetail{Name: "b"} })

	_, err := s.Save(u.ID, a.ID)
	require.NoError(t, err)
	_, err = s.Save(u.ID, b.ID)
	require.NoError(t, err)

	list := s.Saved(u.ID)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].Recipe.ID)

	// 名稱不分大小寫
	again := s.RecipeByName("a", func() api.RecipeDetail { t.Fatal("should reuse existing recipe"); return api.RecipeDetail{} })
	assert.Equal(t, a.ID, again.ID)
}
