package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"dishdash/internal/core/api"
	"dishdash/internal/core/navigation"
	"dishdash/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eggFriedRice() *fakeAPI {
	return &fakeAPI{
		generateResp: &api.GenerateResponse{Recipes: []api.Suggestion{
			{Name: "Egg Fried Rice", CookingTime: intPtr(20), Difficulty: intPtr(3)},
		}},
		detailResp: &api.RecipeDetail{
			ID:           42,
			Ingredients:  []api.IngredientLine{{Quantity: "2", Name: "egg"}},
			Instructions: "1. Crack eggs\n2. Fry rice",
		},
	}
}

func loadedPage(t *testing.T, fake *fakeAPI) (*ResultsPage, Recipe) {
	t.Helper()
	p := NewResultsPage(context.Background(), fake)
	t.Cleanup(p.Close)

	require.NoError(t, p.Load(context.Background(), navigation.ResultsQuery{
		Ingredients:         []string{"egg", "rice"},
		DietaryRestrictions: []string{"vegan"},
		Allergies:           []string{},
	}))
	recipes := p.Recipes()
	require.Len(t, recipes, 1)
	return p, recipes[0]
}

func TestResults_Load(t *testing.T) {
	fake := eggFriedRice()
	_, r := loadedPage(t, fake)

	assert.Equal(t, "Egg Fried Rice", r.Title)
	assert.Equal(t, 20, r.CookTime)
	assert.Equal(t, "3/10", r.Difficulty)
	assert.Equal(t, []string{NotLoaded}, r.Ingredients)
	assert.NotEmpty(t, r.ID)

	req := fake.generateReqs[0]
	assert.Equal(t, []string{"egg", "rice"}, req.Ingredients)
	assert.Equal(t, 2, req.Servings)
	assert.Equal(t, []string{"vegan"}, req.DietaryRestrictions)
}

func TestResults_LoadFailure(t *testing.T) {
	p := NewResultsPage(context.Background(), &fakeAPI{generateErr: errors.New("HTTP 500")})
	defer p.Close()

	err := p.Load(context.Background(), navigation.ResultsQuery{Ingredients: []string{"egg"}})
	require.Error(t, err)
	assert.Equal(t, MsgLoadFailed, p.Error())
	assert.False(t, p.IsLoading())
}

func TestResults_ViewDetails(t *testing.T) {
	fake := eggFriedRice()
	p, r := loadedPage(t, fake)

	full, err := p.ViewDetails(context.Background(), r.ID)
	require.NoError(t, err)

	assert.Equal(t, "42", full.ID)
	assert.Equal(t, "Egg Fried Rice", full.Title)
	assert.Equal(t, []string{"2 egg"}, full.Ingredients)
	assert.Equal(t, []string{"Crack eggs", "Fry rice"}, full.Instructions)
	assert.Equal(t, 2, full.Servings)

	require.Len(t, fake.detailReqs, 1)
	assert.Equal(t, api.DetailsRequest{RecipeName: "Egg Fried Rice", Servings: 2, DietaryRestrictions: []string{}}, fake.detailReqs[0])

	require.NotNil(t, p.Selected())
	assert.Equal(t, "42", p.Selected().ID)
	assert.Equal(t, "42", p.Recipes()[0].ID)
	assert.Empty(t, p.LoadingDetails())
}

func TestResults_ViewDetailsFailure(t *testing.T) {
	fake := eggFriedRice()
	fake.detailErr = errors.New("HTTP 500")
	p, r := loadedPage(t, fake)

	_, err := p.ViewDetails(context.Background(), r.ID)
	require.Error(t, err)
	assert.Equal(t, MsgDetailsFailed, p.Error())
	assert.Nil(t, p.Selected())
	assert.Equal(t, []string{NotLoaded}, p.Recipes()[0].Ingredients)
}

func TestResults_SaveRequiresDetails(t *testing.T) {
	fake := eggFriedRice()
	p, r := loadedPage(t, fake)

	err := p.Save(context.Background(), r.ID)
	assert.True(t, errors.Is(err, common.ErrDetailsNotLoaded))
	assert.Empty(t, fake.saveCalls)
}

func TestResults_SaveOnlyOnSuccess(t *testing.T) {
	fake := eggFriedRice()
	p, r := loadedPage(t, fake)
	_, err := p.ViewDetails(context.Background(), r.ID)
	require.NoError(t, err)

	fake.saveErr = errors.New("Recipe already saved")
	require.Error(t, p.Save(context.Background(), "42"))
	assert.False(t, p.IsSaved("42"))
	assert.Equal(t, MsgSaveFailed, p.Error())

	fake.saveErr = nil
	require.NoError(t, p.Save(context.Background(), "42"))
	assert.True(t, p.IsSaved("42"))
	assert.Equal(t, []string{"42"}, p.SavedIDs())
	assert.Empty(t, p.Error())

	fake.unsaveErr = errors.New("HTTP 500")
	require.Error(t, p.Unsave(context.Background(), "42"))
	assert.True(t, p.IsSaved("42"))
}

func TestResults_ToggleSaved(t *testing.T) {
	fake := eggFriedRice()
	p, r := loadedPage(t, fake)
	_, err := p.ViewDetails(context.Background(), r.ID)
	require.NoError(t, err)

	saved, err := p.ToggleSaved(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, saved)

	saved, err = p.ToggleSaved(context.Background(), "42")
	require.NoError(t, err)
	assert.False(t, saved)

	assert.Equal(t, []string{"42"}, fake.saveCalls)
	assert.Equal(t, []string{"42"}, fake.unsaveCalls)
}

func TestResults_CloseCancelsLoad(t *testing.T) {
	fake := eggFriedRice()
	fake.block = make(chan struct{})
	p := NewResultsPage(context.Background(), fake)

	done := make(chan error, 1)
	go func() {
		done <- p.Load(context.Background(), navigation.ResultsQuery{Ingredients: []string{"egg"}})
	}()

	require.Eventually(t, func() bool { return fake.generateCalls() == 1 }, time.Second, time.Millisecond)
	p.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("load did not return after close")
	}
	assert.Empty(t, p.Recipes())
}

func TestResults_ViewDetailsUnknownID(t *testing.T) {
	p, _ := loadedPage(t, eggFriedRice())
	_, err := p.ViewDetails(context.Background(), "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
