package http

import (
	"undercover-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// ListRooms 返回大厅中等待开局的房间
func ListRooms(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		rooms, err := appState.Coordinator.WaitingRooms(ctx.Request().Context())
		if err != nil {
			zap.L().Warn("查询房间列表失败", zap.Error(err))

			ctx.StatusCode(iris.StatusServiceUnavailable)
			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(rooms)
	}
}
