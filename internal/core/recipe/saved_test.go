package recipe

import (
	"context"
	"errors"
	"testing"

	"dishdash/internal/core/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedFixture() *fakeAPI {
	return &fakeAPI{saved: []api.SavedRecipe{
		{ID: 1, UserID: 1, Recipe: api.RecipeDetail{ID: 10, Name: "Egg Fried Rice", Description: strPtr("Quick weeknight dinner"), CookingTime: intPtr(20), Difficulty: intPtr(3), Ingredients: []api.IngredientLine{}}},
		{ID: 2, UserID: 1, Recipe: api.RecipeDetail{ID: 11, Name: "Tomato Soup", Description: strPtr("Creamy and smoky"), CookingTime: intPtr(45), Difficulty: intPtr(6), Ingredients: []api.IngredientLine{}}},
	}}
}

func loadedSaved(t *testing.T, fake *fakeAPI) *SavedPage {
	t.Helper()
	p := NewSavedPage(context.Background(), fake)
	t.Cleanup(p.Close)
	require.NoError(t, p.Load(context.Background()))
	return p
}

func TestSaved_Search(t *testing.T) {
	p := loadedSaved(t, savedFixture())

	assert.Len(t, p.Search(""), 2)
	// 空白也是查詢的一部分
	assert.Empty(t, p.Search("   "))
	assert.Len(t, p.Search("rice"), 1)
	assert.Empty(t, p.Search("rice "))
	assert.Len(t, p.Search("egg "), 1)

	got := p.Search("SMOKY")
	require.Len(t, got, 1)
	assert.Equal(t, "Tomato Soup", got[0].Title)

	got = p.Search("egg")
	require.Len(t, got, 1)
	assert.Equal(t, "10", got[0].ID)

	assert.Empty(t, p.Search("lasagna"))
}

func TestSaved_Filter(t *testing.T) {
	p := loadedSaved(t, savedFixture())

	assert.Len(t, p.Filter(Filters{MaxCookTime: 30}), 1)
	assert.Len(t, p.Filter(Filters{MaxDifficulty: 6}), 2)
	assert.Len(t, p.Filter(Filters{MaxDifficulty: 5}), 1)
	assert.False(t, Filters{}.IsActive())
	assert.True(t, Filters{Search: " "}.IsActive())
	assert.True(t, Filters{MaxCookTime: 1}.IsActive())
}

func TestSaved_UnsaveClosesOverlay(t *testing.T) {
	fake := savedFixture()
	p := loadedSaved(t, fake)

	_, ok := p.Open("11")
	require.True(t, ok)
	require.NotNil(t, p.Selected())

	require.NoError(t, p.Unsave(context.Background(), "11"))
	assert.Nil(t, p.Selected())
	assert.Len(t, p.Recipes(), 1)
	assert.Equal(t, []string{"11"}, fake.unsaveCalls)
}

func TestSaved_UnsaveOtherKeepsOverlay(t *testing.T) {
	p := loadedSaved(t, savedFixture())

	_, ok := p.Open("10")
	require.True(t, ok)
	require.NoError(t, p.Unsave(context.Background(), "11"))
	require.NotNil(t, p.Selected())
	assert.Equal(t, "10", p.Selected().ID)
}

func TestSaved_UnsaveFailureKeepsItem(t *testing.T) {
	fake := savedFixture()
	fake.unsaveErr = errors.New("Recipe not found")
	p := loadedSaved(t, fake)

	require.Error(t, p.Unsave(context.Background(), "10"))
	assert.Len(t, p.Recipes(), 2)
	assert.Equal(t, MsgUnsaveFailed, p.Error())
	assert.Empty(t, p.Removing())
}

func TestSaved_LoadFailure(t *testing.T) {
	p := NewSavedPage(context.Background(), &fakeAPI{savedErr: errors.New("HTTP 500")})
	defer p.Close()

	require.Error(t, p.Load(context.Background()))
	assert.Equal(t, MsgSavedLoadFailed, p.Error())
	assert.Empty(t, p.Recipes())
}

func TestSaved_OpenUnknown(t *testing.T) {
	p := loadedSaved(t, savedFixture())
	_, ok := p.Open("99")
	assert.False(t, ok)
	assert.Nil(t, p.Selected())
}
