package navigation

// SessionState 守衛只需要的工作階段狀態
type SessionState interface {
	IsLoading() bool
	IsAuthenticated() bool
}

// Decision 守衛的判斷結果
type Decision int

const (
	// Wait 初始權杖檢查中，顯示載入畫面
	Wait Decision = iota
	// Render 可以顯示受保護的內容
	Render
	// Redirect 需要改導向登入頁
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Wait:
		return "wait"
	case Render:
		return "render"
	default:
		return "redirect"
	}
}

// Guard 判斷受保護的路由能否顯示
//
// 檢查中不會先顯示內容，也不會提早導向。已登入的使用者打開登入頁會被導回首頁。
func Guard(s SessionState, route string) (Decision, Navigation) {
	if route == RouteLogin {
		if !s.IsLoading() && s.IsAuthenticated() {
			return Redirect, To(RouteHome)
		}
		return Render, Navigation{}
	}
	if !IsProtected(route) {
		return Render, Navigation{}
	}
	if s.IsLoading() {
		return Wait, Navigation{}
	}
	if !s.IsAuthenticated() {
		return Redirect, To(RouteLogin)
	}
	return Render, Navigation{}
}
