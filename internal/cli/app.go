package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"dishdash/internal/core/api"
	"dishdash/internal/core/navigation"
	"dishdash/internal/core/preferences"
	"dishdash/internal/core/session"
	"dishdash/internal/infrastructure/config"
	"dishdash/internal/infrastructure/storage"
	"dishdash/internal/pkg/common"

	"go.uber.org/zap"
)

// 命令的結束代碼
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// errNeedLogin 受保護的命令在未登入時回傳
var errNeedLogin = errors.New("please log in first: dishdash login <username>")

// command 一個子命令
type command struct {
	usage string
	route string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"login":    {usage: "login <username>", route: navigation.RouteLogin, run: (*App).login},
	"logout":   {usage: "logout", run: (*App).logout},
	"whoami":   {usage: "whoami", route: navigation.RouteProfile, run: (*App).whoami},
	"prefs":    {usage: "prefs [--dietary a,b] [--allergies x,y] [--cooking-time N] [--difficulty N]", route: navigation.RoutePreferences, run: (*App).prefsCmd},
	"generate": {usage: "generate <ingredient>... [--cooking-time N] [--difficulty N] [--details N] [--save]", route: navigation.RouteGenerate, run: (*App).generate},
	"details":  {usage: "details <recipe name>", route: navigation.RouteResults, run: (*App).details},
	"save":     {usage: "save <recipe id>", route: navigation.RouteSaved, run: (*App).save},
	"unsave":   {usage: "unsave <recipe id>", route: navigation.RouteSaved, run: (*App).unsave},
	"saved":    {usage: "saved [--search q] [--max-time N] [--max-difficulty N] [--open id]", route: navigation.RouteSaved, run: (*App).saved},
}

// App 終端前端；持有儲存、API 客戶端與各個存放區
type App struct {
	out    io.Writer
	errOut io.Writer

	storage storage.Storage
	client  *api.Client
	session *session.Store
	prefs   *preferences.Store
}

// New 依設定組裝前端
func New(ctx context.Context, cfg *config.Config, out, errOut io.Writer) (*App, error) {
	baseURL, err := cfg.RequireAPIURL()
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(baseURL, store, api.WithTimeout(cfg.API.Timeout))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sess := session.New(client, store, session.WithLogoutOnUnauthorized(cfg.Session.LogoutOnUnauthorized))
	client.OnUnauthorized(sess.HandleUnauthorized)

	common.LogDebug("前端初始化完成",
		zap.String("api_url", baseURL),
		zap.String("storage", cfg.Storage.Backend),
	)

	return &App{
		out:     out,
		errOut:  errOut,
		storage: store,
		client:  client,
		session: sess,
		prefs:   preferences.NewStore(client),
	}, nil
}

// Close 釋放儲存資源
func (a *App) Close() error {
	return a.storage.Close()
}

// Session 工作階段存放區
func (a *App) Session() *session.Store {
	return a.session
}

// Run 執行一個子命令並回傳結束代碼
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		if len(args) == 0 {
			return ExitUsage
		}
		return ExitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.errOut, "unknown command %q\n\n", args[0])
		a.usage()
		return ExitUsage
	}

	if err := a.session.Init(ctx); err != nil {
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		return ExitError
	}

	if cmd.route != "" {
		decision, target := navigation.Guard(a.session, cmd.route)
		if decision == navigation.Redirect && target.Path == navigation.RouteLogin {
			fmt.Fprintln(a.errOut, errNeedLogin)
			return ExitError
		}
	}

	if err := cmd.run(a, ctx, args[1:]); err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(a.errOut, "error: %v\nusage: dishdash %s\n", ue.err, cmd.usage)
			return ExitUsage
		}
		fmt.Fprintf(a.errOut, "error: %v\n", err)
		return ExitError
	}
	return ExitOK
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("usage: dishdash <command> [flags]\n\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", commands[name].usage)
	}
	fmt.Fprint(a.errOut, b.String())
}

// usageError 參數錯誤
type usageError struct {
	err error
}

func (e usageError) Error() string {
	return e.err.Error()
}

func usagef(format string, args ...interface{}) error {
	return usageError{err: fmt.Errorf(format, args...)}
}
