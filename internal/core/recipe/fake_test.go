package recipe

import (
	"context"
	"sync"

	"dishdash/internal/core/api"
)

// fakeAPI 記錄呼叫並回傳預先設定的結果
type fakeAPI struct {
	mu sync.Mutex

	generateReqs []api.GenerateRequest
	generateResp *api.GenerateResponse
	generateErr  error

	detailReqs []api.DetailsRequest
	detailResp *api.RecipeDetail
	detailErr  error

	saved    []api.SavedRecipe
	savedErr error

	saveCalls   []string
	saveErr     error
	unsaveCalls []string
	unsaveErr   error

	// block 不為 nil 時，GenerateRecipes 會等到 ctx 結束或 block 關閉
	block chan struct{}
}

func (f *fakeAPI) GenerateRecipes(ctx context.Context, req api.GenerateRequest) (*api.GenerateResponse, error) {
	f.mu.Lock()
	f.generateReqs = append(f.generateReqs, req)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.generateResp, nil
}

func (f *fakeAPI) RecipeDetails(_ context.Context, req api.DetailsRequest) (*api.RecipeDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailReqs = append(f.detailReqs, req)
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.detailResp, nil
}

func (f *fakeAPI) SavedRecipes(context.Context) ([]api.SavedRecipe, error) {
	if f.savedErr != nil {
		return nil, f.savedErr
	}
	return f.saved, nil
}

func (f *fakeAPI) SaveRecipe(_ context.Context, id string) (*api.SavedRecipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls = append(f.saveCalls, id)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &api.SavedRecipe{ID: 1}, nil
}

func (f *fakeAPI) UnsaveRecipe(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsaveCalls = append(f.unsaveCalls, id)
	return f.unsaveErr
}

func (f *fakeAPI) generateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.generateReqs)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
