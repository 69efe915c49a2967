package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dishdash/internal/core/api"
	"dishdash/internal/infrastructure/storage"
	"dishdash/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	token    string
	user     *api.User
	loginErr error
	meErr    error
	logins   int
	meCalls  int
}

func (f *fakeAPI) Login(_ context.Context, username string) (*api.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &api.LoginResponse{AccessToken: f.token, TokenType: "bearer", Username: username}, nil
}

func (f *fakeAPI) CurrentUser(context.Context) (*api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

func newStore(t *testing.T, fake *fakeAPI, opts ...Option) (*Store, storage.Storage) {
	t.Helper()
	mem := storage.NewMemoryStorage(0)
	t.Cleanup(func() { _ = mem.Close() })
	return New(fake, mem, opts...), mem
}

func TestInit_NoToken(t *testing.T) {
	fake := &fakeAPI{}
	s, _ := newStore(t, fake)
	assert.True(t, s.IsLoading())

	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.False(t, s.IsLoading())
	assert.Nil(t, s.User())
	assert.Equal(t, 0, fake.meCalls)
}

func TestInit_ValidToken(t *testing.T) {
	fake := &fakeAPI{user: &api.User{ID: 1, Username: "alice"}}
	s, mem := newStore(t, fake)
	require.NoError(t, mem.Set(context.Background(), storage.TokenKey, "tok"))

	require.NoError(t, s.Init(context.Background()))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "alice", s.User().Username)

	raw, ok, err := mem.Get(context.Background(), storage.UserKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"username":"alice"`)
}

func TestInit_RejectedTokenClearsStorage(t *testing.T) {
	fake := &fakeAPI{meErr: common.FromStatus(401, "Could not validate credentials")}
	s, mem := newStore(t, fake)
	ctx := context.Background()
	require.NoError(t, mem.Set(ctx, storage.TokenKey, "stale"))
	require.NoError(t, mem.Set(ctx, storage.UserKey, `{"id":1}`))

	events, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.Init(ctx))
	assert.Equal(t, StateUnauthenticated, s.State())

	_, ok, _ := mem.Get(ctx, storage.TokenKey)
	assert.False(t, ok)
	_, ok, _ = mem.Get(ctx, storage.UserKey)
	assert.False(t, ok)

	ev := <-events
	assert.Equal(t, EventTokenRejected, ev.Kind)
}

func TestLogin_EmptyUsername(t *testing.T) {
	fake := &fakeAPI{}
	s, _ := newStore(t, fake)

	err := s.Login(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
	assert.Equal(t, "Please enter a username", err.Error())
	assert.Equal(t, 0, fake.logins)
}

func TestLogin_Success(t *testing.T) {
	fake := &fakeAPI{token: "tok", user: &api.User{ID: 2, Username: "bob"}}
	s, mem := newStore(t, fake)
	require.NoError(t, s.Init(context.Background()))

	events, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.Login(context.Background(), "  bob "))
	assert.True(t, s.IsAuthenticated())

	token, ok, err := mem.Get(context.Background(), storage.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok", token)

	ev := <-events
	assert.Equal(t, EventLoggedIn, ev.Kind)
	assert.Equal(t, "bob", ev.User.Username)
}

func TestLogin_FailureKeepsState(t *testing.T) {
	fake := &fakeAPI{loginErr: errors.New("Failed to fetch")}
	s, mem := newStore(t, fake)
	require.NoError(t, s.Init(context.Background()))

	err := s.Login(context.Background(), "carol")
	require.Error(t, err)
	assert.Equal(t, StateUnauthenticated, s.State())

	_, ok, _ := mem.Get(context.Background(), storage.TokenKey)
	assert.False(t, ok)
}

func TestLogin_ProfileFailure(t *testing.T) {
	fake := &fakeAPI{token: "tok", meErr: errors.New("boom")}
	s, mem := newStore(t, fake)
	require.NoError(t, s.Init(context.Background()))

	err := s.Login(context.Background(), "dave")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load profile")
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, StateUnauthenticated, s.State())

	// 權杖被撤回，下次 Init 不會再用它
	_, ok, _ := mem.Get(context.Background(), storage.TokenKey)
	assert.False(t, ok)
	_, ok, _ = mem.Get(context.Background(), storage.UserKey)
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	fake := &fakeAPI{token: "tok", user: &api.User{ID: 3, Username: "erin"}}
	s, mem := newStore(t, fake)
	require.NoError(t, s.Login(context.Background(), "erin"))

	s.Logout()
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	_, ok, _ := mem.Get(context.Background(), storage.TokenKey)
	assert.False(t, ok)
	_, ok, _ = mem.Get(context.Background(), storage.UserKey)
	assert.False(t, ok)
}

func TestHandleUnauthorized(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		fake := &fakeAPI{token: "tok", user: &api.User{ID: 1, Username: "a"}}
		s, _ := newStore(t, fake)
		require.NoError(t, s.Login(context.Background(), "a"))

		s.HandleUnauthorized()
		assert.True(t, s.IsAuthenticated())
	})

	t.Run("enabled", func(t *testing.T) {
		fake := &fakeAPI{token: "tok", user: &api.User{ID: 1, Username: "a"}}
		s, mem := newStore(t, fake, WithLogoutOnUnauthorized(true))
		require.NoError(t, s.Login(context.Background(), "a"))

		s.HandleUnauthorized()
		assert.False(t, s.IsAuthenticated())
		_, ok, _ := mem.Get(context.Background(), storage.TokenKey)
		assert.False(t, ok)
	})
}

func TestSubscribe_Cancel(t *testing.T) {
	s, _ := newStore(t, &fakeAPI{})
	events, cancel := s.Subscribe()
	cancel()
	cancel()

	_, open := <-events
	assert.False(t, open)

	// 取消後發佈不應 panic
	s.Logout()
}
