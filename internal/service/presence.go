package service

import (
	"undercover-be/internal/service/dto"
	"undercover-be/internal/service/game"

	"go.uber.org/zap"
)

// reconnect 玩家带着已有的 ID 重新加入，取消掉线计时并恢复在线
func (c *Coordinator) reconnect(conn *connection, room *game.Room, playerID string) dto.JoinRoomResponse {
	c.timers.Cancel(room.ID(), disconnectTimerKey(playerID))
	c.timers.Cancel(room.ID(), abandonTimerKey(playerID))

	conn.roomID = room.ID()
	conn.playerID = playerID

	_ = room.SetOnline(playerID, true)

	zap.L().Info(
		"玩家重连",
		zap.String("room_id", room.ID()),
		zap.String("player_id", playerID),
		zap.String("phase", string(room.Phase())),
	)

	resp := dto.JoinRoomResponse{RoomID: room.ID(), PlayerID: playerID}

	if secret, ok := room.SecretFor(playerID); ok {
		resp.Word = secret.Word
		if room.Phase() == game.PHASE_GAME_OVER {
			resp.Role = secret.Role
		}

		c.send(conn, dto.WrapResponse(dto.RESP_YOUR_WORD, secret))
	}

	c.broadcastState(room)

	return resp
}

// leave 玩家主动离开：等待或结束阶段直接移除，对局中等同于掉线超时
func (c *Coordinator) leave(room *game.Room, playerID string) {
	zap.L().Info(
		"玩家离开房间",
		zap.String("room_id", room.ID()),
		zap.String("player_id", playerID),
		zap.String("phase", string(room.Phase())),
	)

	if room.Phase().InGame() {
		c.abortGame(room, playerID, "玩家离开了房间")
		return
	}

	c.removePlayer(room, playerID)
}

func (c *Coordinator) handleDisconnect(connID string) {
	conn, ok := c.conns[connID]
	if !ok {
		return
	}

	delete(c.conns, connID)

	zap.L().Debug(
		"连接已注销",
		zap.String("conn_id", connID),
		zap.String("room_id", conn.roomID),
		zap.String("player_id", conn.playerID),
	)

	if !conn.bound() {
		return
	}

	roomID, playerID := conn.roomID, conn.playerID

	room := c.registry.Get(roomID)
	if room == nil {
		return
	}

	if _, exists := room.Player(playerID); !exists {
		return
	}

	// 玩家还有别的连接在线
	if c.playerConnected(roomID, playerID) {
		return
	}

	_ = room.SetOnline(playerID, false)

	zap.L().Info(
		"玩家掉线",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
		zap.String("phase", string(room.Phase())),
	)

	c.timers.Cancel(roomID, abandonTimerKey(playerID))
	c.timers.Schedule(roomID, disconnectTimerKey(playerID), c.cfg.DisconnectGrace, func() {
		c.disconnectGraceExpired(roomID, playerID)
	})

	c.broadcastState(room)
}

// disconnectGraceExpired 短暂宽限期结束：等待阶段直接移除，否则开始最终倒计时
func (c *Coordinator) disconnectGraceExpired(roomID, playerID string) {
	room := c.registry.Get(roomID)
	if room == nil {
		return
	}

	player, exists := room.Player(playerID)
	if !exists || c.playerConnected(roomID, playerID) {
		return
	}

	if room.Phase() == game.PHASE_WAITING {
		zap.L().Info(
			"玩家掉线超时，移出房间",
			zap.String("room_id", roomID),
			zap.String("player_id", playerID),
		)

		c.removePlayer(room, playerID)
		return
	}

	c.timers.Schedule(roomID, abandonTimerKey(playerID), c.cfg.GameDisconnectGrace, func() {
		c.abandonExpired(roomID, playerID)
	})

	c.broadcast(roomID, dto.WrapResponse(
		dto.RESP_PLAYER_DISCONNECT_COUNTDOWN,
		dto.PlayerDisconnectCountdownEvent{
			PlayerID:   playerID,
			PlayerName: player.Name,
			Seconds:    int(c.cfg.GameDisconnectGrace.Seconds()),
		},
	))
}

func (c *Coordinator) abandonExpired(roomID, playerID string) {
	room := c.registry.Get(roomID)
	if room == nil {
		return
	}

	if _, exists := room.Player(playerID); !exists || c.playerConnected(roomID, playerID) {
		return
	}

	if room.Phase().InGame() {
		c.abortGame(room, playerID, "玩家掉线超时")
		return
	}

	zap.L().Info(
		"玩家掉线超时，移出房间",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
	)

	c.removePlayer(room, playerID)
}

// abortGame 中止对局：移除该玩家，房间回到等待阶段，对局无法恢复
func (c *Coordinator) abortGame(room *game.Room, playerID, reason string) {
	roomID := room.ID()

	zap.L().Warn(
		"对局中止",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
		zap.String("reason", reason),
	)

	c.timers.Cancel(roomID, TIMER_PREP)
	c.timers.Cancel(roomID, TIMER_GUESS)
	c.timers.Cancel(roomID, disconnectTimerKey(playerID))
	c.timers.Cancel(roomID, abandonTimerKey(playerID))
	c.unbindPlayer(roomID, playerID)

	if room.AbortGame(playerID) {
		c.deleteRoom(roomID)
		return
	}

	c.broadcast(roomID, dto.WrapResponse(
		dto.RESP_GAME_ABORTED,
		dto.GameAbortedEvent{PlayerID: playerID, Reason: reason},
	))
	c.broadcast(roomID, dto.WrapResponse(dto.RESP_GAME_RESET, nil))
	c.broadcastState(room)
}
