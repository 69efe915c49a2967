package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"dishdash/internal/core/api"
	"dishdash/internal/infrastructure/storage"
	"dishdash/internal/pkg/common"

	"go.uber.org/zap"
)

// State 工作階段狀態
type State int

const (
	StateUninitialized State = iota
	StateCheckingToken
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCheckingToken:
		return "checking_token"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventKind 工作階段事件類型
type EventKind int

const (
	EventLoggedIn EventKind = iota
	EventLoggedOut
	EventTokenRejected
)

// Event 工作階段變更事件
type Event struct {
	Kind EventKind
	User *api.User
}

// UserAPI 工作階段需要的遠端操作
type UserAPI interface {
	Login(ctx context.Context, username string) (*api.LoginResponse, error)
	CurrentUser(ctx context.Context) (*api.User, error)
}

// ErrEmptyUsername 使用者名稱為空
var ErrEmptyUsername = common.NewValidationError("Please enter a username")

// Option 工作階段選項
type Option func(*Store)

// WithLogoutOnUnauthorized 收到 401 時自動登出
func WithLogoutOnUnauthorized(enabled bool) Option {
	return func(s *Store) {
		s.logoutOnUnauthorized = enabled
	}
}

// Store 持有目前的使用者與權杖狀態
type Store struct {
	api     UserAPI
	storage storage.Storage

	logoutOnUnauthorized bool

	mu          sync.RWMutex
	state       State
	user        *api.User
	subscribers map[int]chan Event
	nextSub     int
}

// New 創建工作階段存放區
func New(userAPI UserAPI, store storage.Storage, opts ...Option) *Store {
	s := &Store{
		api:         userAPI,
		storage:     store,
		state:       StateUninitialized,
		subscribers: make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init 檢查已保存的權杖；有效則載入使用者，無效則清除
func (s *Store) Init(ctx context.Context) error {
	s.setState(StateCheckingToken, nil)

	token, ok, err := s.storage.Get(ctx, storage.TokenKey)
	if err != nil {
		s.setState(StateUnauthenticated, nil)
		return common.NewError(common.ErrCodeStorage, "failed to read session token", 0, err)
	}
	if !ok || token == "" {
		s.clear(ctx)
		s.setState(StateUnauthenticated, nil)
		return nil
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		common.LogInfo("已保存的權杖無效，清除工作階段", zap.Error(err))
		s.clear(ctx)
		s.setState(StateUnauthenticated, nil)
		s.publish(Event{Kind: EventTokenRejected})
		return nil
	}

	s.persistUser(ctx, user)
	s.setState(StateAuthenticated, user)
	return nil
}

// Login 以使用者名稱登入；任何一步失敗都不留下權杖
func (s *Store) Login(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}

	resp, err := s.api.Login(ctx, username)
	if err != nil {
		return err
	}

	if err := s.storage.Set(ctx, storage.TokenKey, resp.AccessToken); err != nil {
		return common.NewError(common.ErrCodeStorage, "failed to store session token", 0, err)
	}

	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		// 無法取得使用者時撤回剛保存的權杖，儲存與狀態保持一致
		common.LogWarn("登入後取得使用者失敗", zap.Error(err))
		s.clear(ctx)
		s.setState(StateUnauthenticated, nil)
		return fmt.Errorf("failed to load profile: %w", err)
	}

	s.persistUser(ctx, user)
	s.setState(StateAuthenticated, user)
	common.LogInfo("登入成功", zap.String("username", user.Username))
	s.publish(Event{Kind: EventLoggedIn, User: user})
	return nil
}

// Logout 清除權杖與使用者，立即生效
func (s *Store) Logout() {
	s.clear(context.Background())
	s.setState(StateUnauthenticated, nil)
	s.publish(Event{Kind: EventLoggedOut})
}

// HandleUnauthorized 由 API 客戶端在收到 401 時呼叫
func (s *Store) HandleUnauthorized() {
	if !s.logoutOnUnauthorized {
		return
	}
	if s.State() != StateAuthenticated {
		return
	}
	common.LogInfo("權杖被伺服器拒絕，自動登出")
	s.clear(context.Background())
	s.setState(StateUnauthenticated, nil)
	s.publish(Event{Kind: EventTokenRejected})
}

// User 目前的使用者，未登入時為 nil
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// State 目前狀態
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated 是否已登入
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateAuthenticated && s.user != nil
}

// IsLoading 初始權杖檢查尚未完成
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateUninitialized || s.state == StateCheckingToken
}

// Subscribe 訂閱工作階段事件；呼叫回傳的函式取消訂閱
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 8)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

func (s *Store) publish(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			common.LogWarn("工作階段事件佇列已滿，丟棄事件")
		}
	}
}

func (s *Store) setState(state State, user *api.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = user
}

// clear 移除權杖與使用者快照；儲存錯誤只記錄
func (s *Store) clear(ctx context.Context) {
	for _, key := range []string{storage.TokenKey, storage.UserKey} {
		if err := s.storage.Remove(ctx, key); err != nil {
			common.LogWarn("清除工作階段資料失敗", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *Store) persistUser(ctx context.Context, user *api.User) {
	data, err := common.ToJSON(user)
	if err != nil {
		common.LogWarn("序列化使用者失敗", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, storage.UserKey, data); err != nil {
		common.LogWarn("保存使用者快照失敗", zap.Error(err))
	}
}
