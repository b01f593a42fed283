package service

import (
	"context"
	"time"

	"undercover-be/internal/service/dto"
	"undercover-be/internal/service/game"

	"go.uber.org/zap"
)

type CoordinatorConfig struct {
	// 开局或换词后的看词时间，到期自动进入发言阶段
	PrepWindow time.Duration
	// 卧底猜词时间
	GuessWindow time.Duration
	// 掉线后的短暂宽限期
	DisconnectGrace time.Duration
	// 游戏中掉线超过短暂宽限期后的最终等待时间
	GameDisconnectGrace time.Duration
}

func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		PrepWindow:          30 * time.Second,
		GuessWindow:         30 * time.Second,
		DisconnectGrace:     8 * time.Second,
		GameDisconnectGrace: 60 * time.Second,
	}
}

// connection 是一条传输层连接，加入房间后绑定到 (roomID, playerID)
type connection struct {
	id       string
	out      chan<- dto.ResponseWrapper
	roomID   string
	playerID string
}

func (c *connection) bound() bool {
	return c.roomID != ""
}

// Coordinator 把连接映射为房间内的玩家身份，把玩家的请求转交给 Room，
// 并在每次状态变化后广播。所有房间、连接和计时器都只在同一个事件循环
// 协程中读写，不同请求之间不会交错执行。
type Coordinator struct {
	cfg      CoordinatorConfig
	registry *RoomRegistry
	timers   *timerTable
	conns    map[string]*connection

	events chan func()
	doneCh chan struct{}
}

func NewCoordinator(cfg CoordinatorConfig, registry *RoomRegistry, sched Scheduler) *Coordinator {
	c := &Coordinator{
		cfg:      cfg,
		registry: registry,
		conns:    make(map[string]*connection),
		events:   make(chan func(), 1024),
		doneCh:   make(chan struct{}),
	}

	c.timers = newTimerTable(sched, c.post)

	return c
}

// Run 运行事件循环，直到 ctx 结束
func (c *Coordinator) Run(ctx context.Context) {
	zap.L().Info("事件循环已启动")

	defer func() {
		close(c.doneCh)
		for roomID := range c.timers.rooms {
			c.timers.CancelAll(roomID)
		}

		zap.L().Info("事件循环已退出")
	}()

	for {
		select {
		case fn := <-c.events:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// post 把一个事件投递到事件循环，循环退出后丢弃
func (c *Coordinator) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.doneCh:
	}
}

// Connect 注册一条新连接，out 需要有足够的缓冲，写满时消息会被丢弃
func (c *Coordinator) Connect(connID string, out chan<- dto.ResponseWrapper) {
	c.post(func() {
		c.conns[connID] = &connection{id: connID, out: out}
		zap.L().Debug("连接已注册", zap.String("conn_id", connID))
	})
}

// Dispatch 把客户端请求交给事件循环处理
func (c *Coordinator) Dispatch(connID string, req dto.RequestWrapper) {
	c.post(func() {
		c.handleRequest(connID, req)
	})
}

// Disconnect 注销连接，如果这是玩家的最后一条连接则开始掉线宽限
func (c *Coordinator) Disconnect(connID string) {
	c.post(func() {
		c.handleDisconnect(connID)
	})
}

// WaitingRooms 查询大厅中等待开局的房间
func (c *Coordinator) WaitingRooms(ctx context.Context) ([]game.Summary, error) {
	respCh := make(chan []game.Summary, 1)

	select {
	case c.events <- func() { respCh <- c.registry.Waiting() }:
	case <-c.doneCh:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case rooms := <-respCh:
		return rooms, nil
	case <-c.doneCh:
		return nil, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) send(conn *connection, resp dto.ResponseWrapper) {
	select {
	case conn.out <- resp:
	default:
		zap.L().Warn(
			"发送响应失败：连接响应通道已满",
			zap.String("conn_id", conn.id),
			zap.String("player_id", conn.playerID),
			zap.String("response_type", resp.RespType),
		)
	}
}

// broadcast 发给房间内所有连接
func (c *Coordinator) broadcast(roomID string, resp dto.ResponseWrapper) {
	for _, conn := range c.conns {
		if conn.roomID == roomID {
			c.send(conn, resp)
		}
	}
}

// unicast 发给玩家自己的所有连接
func (c *Coordinator) unicast(roomID, playerID string, resp dto.ResponseWrapper) {
	for _, conn := range c.conns {
		if conn.roomID == roomID && conn.playerID == playerID {
			c.send(conn, resp)
		}
	}
}

func (c *Coordinator) broadcastState(room *game.Room) {
	c.broadcast(room.ID(), dto.WrapResponse(dto.RESP_ROOM_UPDATE, room.PublicView()))
}

// sendSecrets 把每个玩家自己的身份和词单独发给他
func (c *Coordinator) sendSecrets(room *game.Room) {
	for _, p := range room.Players() {
		secret, ok := room.SecretFor(p.ID)
		if !ok {
			continue
		}

		c.unicast(room.ID(), p.ID, dto.WrapResponse(dto.RESP_YOUR_WORD, secret))
	}
}

func (c *Coordinator) playerConnected(roomID, playerID string) bool {
	for _, conn := range c.conns {
		if conn.roomID == roomID && conn.playerID == playerID {
			return true
		}
	}

	return false
}

func (c *Coordinator) unbindPlayer(roomID, playerID string) {
	for _, conn := range c.conns {
		if conn.roomID == roomID && conn.playerID == playerID {
			conn.roomID = ""
			conn.playerID = ""
		}
	}
}

// deleteRoom 删除房间并取消它的所有计时器
func (c *Coordinator) deleteRoom(roomID string) {
	c.timers.CancelAll(roomID)

	for _, conn := range c.conns {
		if conn.roomID == roomID {
			conn.roomID = ""
			conn.playerID = ""
		}
	}

	c.registry.Delete(roomID)
}

// removePlayer 把玩家移出房间，房间空了就删除，否则广播新状态
func (c *Coordinator) removePlayer(room *game.Room, playerID string) {
	c.timers.Cancel(room.ID(), disconnectTimerKey(playerID))
	c.timers.Cancel(room.ID(), abandonTimerKey(playerID))
	c.unbindPlayer(room.ID(), playerID)

	if room.RemovePlayer(playerID) {
		c.deleteRoom(room.ID())
		return
	}

	c.broadcastState(room)
}
