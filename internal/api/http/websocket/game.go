package websocket

import (
	"encoding/json"
	"time"

	"undercover-be/internal/service"
	"undercover-be/internal/service/dto"
	"undercover-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Dispatcher 是连接在游戏侧的对端
type Dispatcher interface {
	Connect(connID string, out chan<- dto.ResponseWrapper)
	Dispatch(connID string, req dto.RequestWrapper)
	Disconnect(connID string)
}

// JoinGame 升级为 WebSocket 连接。连接本身不携带身份，
// 客户端通过 CreateRoom 或 JoinRoom 请求绑定到房间中的玩家。
func JoinGame(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		defer conn.Close()

		limiter := rate.NewLimiter(
			rate.Limit(appState.Cfg.MessageRate),
			appState.Cfg.MessageBurst,
		)

		serve(conn, appState.Coordinator, limiter, ctx.RemoteAddr())
	}
}

func serve(conn *websocket.Conn, dispatcher Dispatcher, limiter *rate.Limiter, clientIP string) {
	connID := service.GenID()

	conn.SetReadLimit(MAX_MESSAGE_SIZE)
	_ = conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
	conn.SetPongHandler(heartbeatHandler(conn))

	respCh := make(chan dto.ResponseWrapper, RESP_BUFFER_SIZE)

	dispatcher.Connect(connID, respCh)

	zap.L().Info(
		"WebSocket连接已建立",
		zap.String("client_ip", clientIP),
		zap.String("conn_id", connID),
	)

	// 写协程的退出信号
	writeDoneCh := make(chan struct{})
	go writePump(conn, respCh, writeDoneCh, connID)

	readPump(conn, dispatcher, limiter, respCh, connID)

	close(writeDoneCh)

	// 读循环退出，表示客户端断开连接，由事件循环决定是否开始掉线计时
	dispatcher.Disconnect(connID)

	zap.L().Info(
		"WebSocket连接处理完成",
		zap.String("client_ip", clientIP),
		zap.String("conn_id", connID),
	)
}

func writePump(conn *websocket.Conn, respCh <-chan dto.ResponseWrapper, doneCh <-chan struct{}, connID string) {
	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-doneCh:
			zap.L().Debug("WebSocket写入协程退出", zap.String("conn_id", connID))
			return

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Warn(
					"发送心跳失败",
					zap.String("conn_id", connID),
					zap.Error(err),
				)
				return
			}

		case resp := <-respCh:
			_ = conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
			if err := conn.WriteJSON(resp); err != nil {
				zap.L().Warn(
					"发送消息失败",
					zap.String("conn_id", connID),
					zap.Error(err),
				)
				return
			}

			zap.L().Debug(
				"发送消息",
				zap.String("conn_id", connID),
				zap.String("response_type", resp.RespType),
			)
		}
	}
}

func readPump(
	conn *websocket.Conn,
	dispatcher Dispatcher,
	limiter *rate.Limiter,
	respCh chan<- dto.ResponseWrapper,
	connID string,
) {
	reply := func(resp dto.ResponseWrapper) {
		select {
		case respCh <- resp:
		default:
		}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				zap.L().Warn(
					"读取消息失败",
					zap.String("conn_id", connID),
					zap.Error(err),
				)
			}

			return
		}

		if !limiter.Allow() {
			zap.L().Debug("消息过于频繁，已丢弃", zap.String("conn_id", connID))
			reply(dto.WrapErrResponse("", "操作过于频繁，请稍后再试"))
			continue
		}

		var wrapper dto.RequestWrapper

		if err := json.Unmarshal(msg, &wrapper); err != nil || wrapper.ReqType == "" {
			zap.L().Debug(
				"解析消息失败",
				zap.String("conn_id", connID),
				zap.Error(err),
			)

			reply(dto.WrapErrResponse(wrapper.ReqType, service.ErrBadRequest.Error()))
			continue
		}

		dispatcher.Dispatch(connID, wrapper)
	}
}
