package navigation

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	loading bool
	authed  bool
}

func (f fakeSession) IsLoading() bool       { return f.loading }
func (f fakeSession) IsAuthenticated() bool { return f.authed }

func TestGuard(t *testing.T) {
	tests := []struct {
		name    string
		session fakeSession
		route   string
		want    Decision
		target  string
	}{
		{"loading waits", fakeSession{loading: true}, RouteGenerate, Wait, ""},
		{"unauthenticated redirects", fakeSession{}, RouteSaved, Redirect, RouteLogin},
		{"authenticated renders", fakeSession{authed: true}, RouteResults, Render, ""},
		{"login page while loading", fakeSession{loading: true}, RouteLogin, Render, ""},
		{"login page when signed in", fakeSession{authed: true}, RouteLogin, Redirect, RouteHome},
		{"unknown route is public", fakeSession{}, "/about", Render, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, nav := Guard(tt.session, tt.route)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.target, nav.Path)
		})
	}
}

func TestResultsQuery_Navigation(t *testing.T) {
	q := ResultsQuery{
		Ingredients:         []string{"egg", "rice"},
		DietaryRestrictions: []string{},
		Allergies:           []string{"peanut"},
	}

	nav := q.Navigation()
	assert.Equal(t, RouteResults, nav.Path)
	assert.Equal(t, "egg,rice", nav.Query.Get(ParamIngredients))
	assert.Equal(t, "", nav.Query.Get(ParamDietaryRestrictions))
	assert.Equal(t, "peanut", nav.Query.Get(ParamAllergies))

	parsed, err := Parse(nav.String())
	require.NoError(t, err)
	assert.Equal(t, q, ParseResultsQuery(parsed.Query))
}

func TestParseResultsQuery_Missing(t *testing.T) {
	q := ParseResultsQuery(url.Values{})
	assert.Equal(t, []string{}, q.Ingredients)
	assert.Equal(t, []string{}, q.DietaryRestrictions)
	assert.Equal(t, []string{}, q.Allergies)
}

func TestBoundary_CloseCancelsBound(t *testing.T) {
	b := NewBoundary(context.Background())
	ctx, cancel := b.Bind(context.Background())
	defer cancel()

	assert.False(t, b.Closed())
	b.Close()
	b.Close()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("bound context was not canceled")
	}
	assert.True(t, b.Closed())
}
