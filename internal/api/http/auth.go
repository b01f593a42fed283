package http

import (
	"errors"

	"undercover-be/internal/service/auth"
	"undercover-be/internal/state"

	"github.com/kataras/iris/v12"
)

const SESSION_HEADER = "X-Session-Id"

type VerifyPasswordRequest struct {
	Password  string `json:"password"`
	SessionID string `json:"sessionId"`
}

func VerifyPassword(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		var req VerifyPasswordRequest

		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "请求参数无效",
			})
			return
		}

		if err := appState.Gate.Verify(req.Password, req.SessionID); err != nil {
			status := iris.StatusUnauthorized
			if errors.Is(err, auth.ErrMissingCredentials) {
				status = iris.StatusBadRequest
			}

			ctx.StatusCode(status)
			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(iris.Map{
			"success": true,
		})
	}
}

// RequireAuth 会话 ID 可以放在请求头里，WebSocket 握手无法自定义请求头时放在查询参数里
func RequireAuth(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		sessionID := ctx.GetHeader(SESSION_HEADER)
		if sessionID == "" {
			sessionID = ctx.URLParam("session_id")
		}

		if !appState.Gate.Allowed(sessionID, ctx.URLParam("password")) {
			ctx.StatusCode(iris.StatusUnauthorized)
			ctx.JSON(iris.Map{
				"error": "需要密码验证",
			})
			return
		}

		ctx.Next()
	}
}
