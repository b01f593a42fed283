package http

import (
	"fmt"
	"os"

	"undercover-be/internal/api/http/websocket"
	"undercover-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// multipart 包装的额外开销
const UPLOAD_OVERHEAD = 64 * 1024

func NewApp(appState *state.AppState) *iris.Application {
	app := iris.Default()

	if dir := appState.Cfg.StaticDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			app.HandleDir(
				"/",
				iris.Dir(dir),
				iris.DirOptions{
					IndexName: "index.html",
					SPA:       true,
					Compress:  true,
				},
			)
		} else {
			zap.L().Warn("前端目录不存在，跳过静态文件托管", zap.String("static_dir", dir))
		}
	}

	api := app.Party("/api/v1")

	requireAuth := RequireAuth(appState)

	api.Post("/verify-password", VerifyPassword(appState))

	api.Get("/rooms", requireAuth, ListRooms(appState))

	api.Post(
		"/voice",
		requireAuth,
		iris.LimitRequestBodySize(appState.Voice.MaxBytes()+UPLOAD_OVERHEAD),
		UploadVoice(appState),
	)
	api.Get("/voice/{file:string}", requireAuth, GetVoice(appState))

	api.Get("/ws/join", requireAuth, websocket.JoinGame(appState))

	return app
}

func RunServer(appState *state.AppState) error {
	app := NewApp(appState)

	addr := fmt.Sprintf(
		"%s:%d",
		appState.Cfg.Host,
		appState.Cfg.Port,
	)

	zap.L().Info("服务器启动", zap.String("addr", addr))

	return app.Listen(addr, iris.WithoutServerError(iris.ErrServerClosed))
}
